/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"wibeboard/internal/board"
	"wibeboard/internal/registry"
	"wibeboard/internal/version"
)

// newPDF draws the scene on a single page sized to its content.
//
// Coordinates:
// - Page origin is top-left, units are points.
// - One logical unit maps to Options.Scale points.
// - Built-in Helvetica keeps text vector without embedding.
func newPDF(s board.Scene, reg *registry.Registry, opt Options) *gofpdf.Fpdf {
	opt = opt.withDefaults()
	p := buildPlan(s, reg, opt)
	k := opt.Scale
	x := func(v float32) float64 { return float64(v-p.bounds.X) * k }
	y := func(v float32) float64 { return float64(v-p.bounds.Y) * k }
	size := gofpdf.SizeType{Wd: float64(p.bounds.W) * k, Ht: float64(p.bounds.H) * k}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: size})
	pdf.SetTitle(opt.Title, true)
	pdf.SetAuthor("Wibeboard "+version.Version, false)
	pdf.SetCreator("wibeboard export", false)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPageFormat("", size)
	pdf.SetFont("Helvetica", "", 9*k)

	if opt.IncludeGrid && p.cell > 0 {
		setDrawColor(pdf, colGrid)
		pdf.SetLineWidth(0.25)
		for gx := ceilTo(p.bounds.X, p.cell); gx <= p.bounds.X+p.bounds.W; gx += p.cell {
			pdf.Line(x(gx), 0, x(gx), size.Ht)
		}
		for gy := ceilTo(p.bounds.Y, p.cell); gy <= p.bounds.Y+p.bounds.H; gy += p.cell {
			pdf.Line(0, y(gy), size.Wd, y(gy))
		}
	}

	pdf.SetLineWidth(k)
	for _, l := range p.lines {
		setDrawColor(pdf, l.stroke)
		setDash(pdf, l.dashed, k)
		pdf.Line(x(l.from.X), y(l.from.Y), x(l.to.X), y(l.to.Y))
	}
	for _, b := range p.boxes {
		setDrawColor(pdf, b.stroke)
		setFillColor(pdf, b.fill)
		setDash(pdf, b.dashed, k)
		pdf.Rect(x(b.rect.X), y(b.rect.Y), float64(b.rect.W)*k, float64(b.rect.H)*k, "FD")
		if b.label != "" {
			pdf.Text(x(b.rect.X)+6*k, y(b.rect.Y)+14*k, b.label)
		}
	}
	setDash(pdf, false, k)
	for _, d := range p.buttons {
		setFillColor(pdf, d.fill)
		setDrawColor(pdf, d.fill)
		if d.highlight {
			setDrawColor(pdf, colInk)
		}
		cx, cy := x(d.center.X), y(d.center.Y)
		pdf.Circle(cx, cy, float64(d.radius)*k, "FD")
		pdf.Text(cx-pdf.GetStringWidth(d.label)/2, cy+3*k, d.label)
	}
	return pdf
}

// WritePDF renders the scene as a one-page PDF to w.
func WritePDF(w io.Writer, s board.Scene, reg *registry.Registry, opt Options) error {
	if err := newPDF(s, reg, opt).Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// ExportPDF writes the scene to outPath, creating parent directories.
func ExportPDF(s board.Scene, reg *registry.Registry, outPath string, opt Options) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := newPDF(s, reg, opt).OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func ceilTo(v, step float32) float32 {
	n := int(v / step)
	if float32(n)*step < v {
		n++
	}
	return float32(n) * step
}

func setDash(pdf *gofpdf.Fpdf, on bool, k float64) {
	if on {
		pdf.SetDashPattern([]float64{4 * k, 3 * k}, 0)
		return
	}
	pdf.SetDashPattern(nil, 0)
}

func setDrawColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}
