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
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"wibeboard/internal/board"
	"wibeboard/internal/geometry"
	"wibeboard/internal/registry"
)

// RenderPNG rasterises the scene. Labels use the 7x13 bitmap face, so text
// does not scale with Options.Scale.
func RenderPNG(s board.Scene, reg *registry.Registry, opt Options) *image.RGBA {
	opt = opt.withDefaults()
	p := buildPlan(s, reg, opt)
	px := func(v float32) int { return int(math.Round(float64(v) * opt.Scale)) }
	at := func(pt geometry.Point) (int, int) { return px(pt.X - p.bounds.X), px(pt.Y - p.bounds.Y) }

	img := image.NewRGBA(image.Rect(0, 0, px(p.bounds.W), px(p.bounds.H)))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: colPaper}, image.Point{}, draw.Src)

	if opt.IncludeGrid && p.cell > 0 {
		start := geometry.Pt(float32(math.Ceil(float64(p.bounds.X/p.cell)))*p.cell, float32(math.Ceil(float64(p.bounds.Y/p.cell)))*p.cell)
		for y := start.Y; y <= p.bounds.Y+p.bounds.H; y += p.cell {
			for x := start.X; x <= p.bounds.X+p.bounds.W; x += p.cell {
				gx, gy := at(geometry.Pt(x, y))
				img.SetRGBA(gx, gy, colGrid)
			}
		}
	}
	for _, l := range p.lines {
		x0, y0 := at(l.from)
		x1, y1 := at(l.to)
		drawLine(img, x0, y0, x1, y1, l.stroke, l.dashed)
	}
	for _, b := range p.boxes {
		x0, y0 := at(b.rect.Min())
		x1, y1 := at(b.rect.Max())
		fillRect(img, x0, y0, x1-1, y1-1, b.fill)
		if b.dashed {
			dashRect(img, x0, y0, x1-1, y1-1, b.stroke)
		} else {
			strokeRect(img, x0, y0, x1-1, y1-1, b.stroke)
		}
		if b.label != "" {
			drawLabel(img, x0+6, y0+16, b.label, colInk)
		}
	}
	for _, d := range p.buttons {
		cx, cy := at(d.center)
		r := px(d.radius)
		fillCircle(img, cx, cy, r, d.fill)
		if d.highlight {
			strokeCircle(img, cx, cy, r, colInk)
		}
		drawLabel(img, cx-len(d.label)*7/2, cy+4, d.label, colInk)
	}
	return img
}

// WritePNG encodes the rendered scene to w.
func WritePNG(w io.Writer, s board.Scene, reg *registry.Registry, opt Options) error {
	if err := png.Encode(w, RenderPNG(s, reg, opt)); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// ExportPNG writes the scene to outPath, creating parent directories.
func ExportPNG(s board.Scene, reg *registry.Registry, outPath string, opt Options) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := WritePNG(f, s, reg, opt); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}

func drawLabel(img *image.RGBA, x, y int, text string, col color.RGBA) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}

// dashRect is strokeRect with 4px dashes.
func dashRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	for x := x0; x <= x1; x++ {
		if (x-x0)/4%2 == 0 {
			img.SetRGBA(x, y0, col)
			img.SetRGBA(x, y1, col)
		}
	}
	for y := y0; y <= y1; y++ {
		if (y-y0)/4%2 == 0 {
			img.SetRGBA(x0, y, col)
			img.SetRGBA(x1, y, col)
		}
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			img.SetRGBA(x, y, col)
		}
	}
}

// drawLine is Bresenham's line; dashed lines skip every other 4px run.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA, dashed bool) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for i := 0; ; i++ {
		if !dashed || i/4%2 == 0 {
			img.SetRGBA(x0, y0, col)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func fillCircle(img *image.RGBA, cx, cy, r int, col color.RGBA) {
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			if x*x+y*y <= r*r {
				img.SetRGBA(cx+x, cy+y, col)
			}
		}
	}
}

func strokeCircle(img *image.RGBA, cx, cy, r int, col color.RGBA) {
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			if d := x*x + y*y; d <= r*r && d > (r-1)*(r-1) {
				img.SetRGBA(cx+x, cy+y, col)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
