/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"wibeboard/internal/board"
	"wibeboard/internal/events"
	"wibeboard/internal/geometry"
	"wibeboard/internal/sched"
)

// sampleBoard has one agent node at (100,100), 80x40.
func sampleBoard(t *testing.T) *board.Board {
	t.Helper()
	b, err := board.New(board.Options{Scheduler: sched.NewManual(time.Time{})})
	if err != nil {
		t.Fatalf("new board: %v", err)
	}
	t.Cleanup(b.Close)
	if _, err := b.AddNode("a", "agent:worker", "Alpha", geometry.Pt(100, 100)); err != nil {
		t.Fatalf("add node: %v", err)
	}
	return b
}

func TestRenderPNGSizeFollowsContentAndScale(t *testing.T) {
	b := sampleBoard(t)
	img := RenderPNG(b.Scene(), b.Registry, Options{})
	if got := img.Bounds().Size(); got.X != 128 || got.Y != 88 {
		t.Fatalf("size = %v, want 128x88", got)
	}
	want := color.RGBA{R: 0x7c, G: 0x3a, B: 0xed, A: 0xff}
	if got := img.RGBAAt(24, 24); got != want {
		t.Fatalf("node corner = %v, want widget color %v", got, want)
	}
	if got := img.RGBAAt(2, 2); got != colPaper {
		t.Fatalf("margin = %v, want paper", got)
	}

	img = RenderPNG(b.Scene(), b.Registry, Options{Scale: 2})
	if got := img.Bounds().Size(); got.X != 256 || got.Y != 176 {
		t.Fatalf("scaled size = %v, want 256x176", got)
	}
}

func TestPlanShowsGhostWhilePositioning(t *testing.T) {
	b := sampleBoard(t)
	b.PointerDown(geometry.Pt(180, 120), events.Mouse, events.ButtonPrimary)
	b.PointerMove(geometry.Pt(400, 300), events.Mouse)

	p := buildPlan(b.Scene(), b.Registry, Options{}.withDefaults())
	if len(p.boxes) != 2 {
		t.Fatalf("boxes = %d, want node and ghost", len(p.boxes))
	}
	if !p.boxes[1].dashed || p.boxes[1].stroke != colGhost {
		t.Fatalf("ghost box = %+v", p.boxes[1])
	}
	if len(p.lines) != 1 || !p.lines[0].dashed {
		t.Fatalf("lines = %+v, want one dashed ghost edge", p.lines)
	}
	if p.lines[0].from != geometry.Pt(180, 120) {
		t.Fatalf("edge starts at %v, want the output handle", p.lines[0].from)
	}
}

func TestMenuDrawnOnlyWhenRequested(t *testing.T) {
	b := sampleBoard(t)
	b.Click(geometry.Pt(140, 120))
	if !b.Menu.Visible() {
		t.Fatalf("menu did not open")
	}
	if p := buildPlan(b.Scene(), b.Registry, Options{}.withDefaults()); len(p.buttons) != 0 {
		t.Fatalf("buttons drawn without IncludeMenu")
	}
	p := buildPlan(b.Scene(), b.Registry, Options{IncludeMenu: true}.withDefaults())
	if len(p.buttons) != 4 {
		t.Fatalf("buttons = %d, want 4 primaries", len(p.buttons))
	}
	if p.buttons[0].radius != 20 {
		t.Fatalf("radius = %v, want 20", p.buttons[0].radius)
	}
}

func TestWritePDF(t *testing.T) {
	b := sampleBoard(t)
	var buf bytes.Buffer
	if err := WritePDF(&buf, b.Scene(), b.Registry, Options{IncludeGrid: true}); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output is not a PDF")
	}
}

func TestBatchExportPrintPreset(t *testing.T) {
	b := sampleBoard(t)
	dir := t.TempDir()
	paths, err := BatchExport(b.Scene(), b.Registry, BatchOptions{Preset: PresetPrint, OutDir: filepath.Join(dir, "print")})
	if err != nil {
		t.Fatalf("batch export: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("paths = %v, want pdf and png", paths)
	}
	for _, p := range paths {
		st, err := os.Stat(p)
		if err != nil {
			t.Fatalf("missing %s: %v", p, err)
		}
		if st.Size() <= 0 {
			t.Fatalf("empty file: %s", p)
		}
	}
	if _, err := BatchExport(b.Scene(), b.Registry, BatchOptions{Formats: []string{"svg"}, OutDir: dir}); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestParsePreset(t *testing.T) {
	if p, err := ParsePreset(""); err != nil || p != PresetWeb {
		t.Fatalf("empty preset = %q, %v", p, err)
	}
	if p, err := ParsePreset(" Print "); err != nil || p != PresetPrint {
		t.Fatalf("print preset = %q, %v", p, err)
	}
	if _, err := ParsePreset("poster"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestParseHex(t *testing.T) {
	cases := map[string]color.RGBA{
		"#7c3aed": {R: 0x7c, G: 0x3a, B: 0xed, A: 0xff},
		"fff":     {R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	}
	for in, want := range cases {
		if got, ok := parseHex(in); !ok || got != want {
			t.Fatalf("parseHex(%q) = %v, %v", in, got, ok)
		}
	}
	if _, ok := parseHex("#12"); ok {
		t.Fatalf("short hex accepted")
	}
}
