/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders a board scene to PNG and PDF snapshots.
package export

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"wibeboard/internal/board"
	"wibeboard/internal/connector"
	"wibeboard/internal/geometry"
	"wibeboard/internal/placeholder"
	"wibeboard/internal/registry"
)

// Options controls both exporters.
// - Scale: output units per logical unit (pixels for PNG, points for PDF); 0 means 1
// - Margin: logical padding around the drawn content; 0 means 24
// - IncludeGrid: draw the snapping grid behind the nodes
// - IncludeMenu: draw the radial menu if it is open
// - Title: PDF document title
type Options struct {
	Scale       float64
	Margin      float32
	IncludeGrid bool
	IncludeMenu bool
	Title       string
}

func (o Options) withDefaults() Options {
	if o.Scale <= 0 {
		o.Scale = 1
	}
	if o.Margin <= 0 {
		o.Margin = 24
	}
	if o.Title == "" {
		o.Title = "Wibeboard"
	}
	return o
}

var (
	colInk         = color.RGBA{R: 0x33, G: 0x41, B: 0x55, A: 0xff}
	colEdge        = color.RGBA{R: 0x64, G: 0x74, B: 0x8b, A: 0xff}
	colPlaceholder = color.RGBA{R: 0x94, G: 0xa3, B: 0xb8, A: 0xff}
	colGhost       = color.RGBA{R: 0xcb, G: 0xd5, B: 0xe1, A: 0xff}
	colPaper       = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	colGrid        = color.RGBA{R: 0xe2, G: 0xe8, B: 0xf0, A: 0xff}
	colButton      = color.RGBA{R: 0xe2, G: 0xe8, B: 0xf0, A: 0xff}
)

type box struct {
	rect   geometry.Rect
	label  string
	fill   color.RGBA
	stroke color.RGBA
	dashed bool
}

type line struct {
	from, to geometry.Point
	stroke   color.RGBA
	dashed   bool
}

type disc struct {
	center    geometry.Point
	radius    float32
	label     string
	fill      color.RGBA
	highlight bool
}

// plan is a scene flattened to primitives in logical coordinates.
type plan struct {
	bounds  geometry.Rect
	cell    float32
	boxes   []box
	lines   []line
	buttons []disc
}

func buildPlan(s board.Scene, reg *registry.Registry, opt Options) plan {
	p := plan{cell: reg.Grid().Cell}
	rects := make(map[string]geometry.Rect, len(s.Nodes))
	for _, n := range s.Nodes {
		rects[n.ID] = n.Rect
		p.boxes = append(p.boxes, nodeBox(n, reg))
	}
	for _, e := range s.Edges {
		src, ok1 := rects[e.Source]
		dst, ok2 := rects[e.Target]
		if !ok1 || !ok2 {
			continue
		}
		l := line{
			from:   geometry.Pt(src.X+src.W, src.Y+src.H/2),
			to:     geometry.Pt(dst.X, dst.Y+dst.H/2),
			stroke: colEdge,
		}
		if e.Kind != connector.RenderHost {
			l.stroke, l.dashed = colPlaceholder, true
		}
		p.lines = append(p.lines, l)
	}
	if opt.IncludeMenu && s.Menu.Visible {
		vp := s.Viewport
		for _, b := range s.Menu.Buttons {
			lo, hi := vp.ScreenToLogical(b.Rect.Min()), vp.ScreenToLogical(b.Rect.Max())
			fill := colButton
			if c, ok := parseHex(b.Item.Color); ok {
				fill = tint(c, 0.35)
			}
			p.buttons = append(p.buttons, disc{
				center:    vp.ScreenToLogical(b.Center),
				radius:    (hi.X - lo.X) / 2,
				label:     b.Item.Label,
				fill:      fill,
				highlight: b.Highlighted || b.Expanded,
			})
		}
	}
	p.bounds = contentBounds(p).Inset(-opt.Margin, -opt.Margin)
	return p
}

func nodeBox(n connector.RenderNode, reg *registry.Registry) box {
	switch n.Kind {
	case connector.RenderGhost:
		return box{rect: n.Rect, fill: colPaper, stroke: colGhost, dashed: true}
	case connector.RenderPlaceholder:
		label := fmt.Sprintf("%dx%d", n.GridCols, n.GridRows)
		if n.Placeholder == placeholder.KindPicker && n.Hovered != "" {
			label = n.Hovered + " " + label
		}
		return box{rect: n.Rect, label: label, fill: colPaper, stroke: colPlaceholder, dashed: true}
	}
	stroke := colInk
	if w := reg.Get(n.Type); w != nil {
		if c, ok := parseHex(w.Color); ok {
			stroke = c
		}
	}
	label := n.Label
	if label == "" {
		label = n.Type
	}
	return box{rect: n.Rect, label: label, fill: tint(stroke, 0.12), stroke: stroke}
}

func contentBounds(p plan) geometry.Rect {
	var rs []geometry.Rect
	for _, b := range p.boxes {
		rs = append(rs, b.rect)
	}
	for _, d := range p.buttons {
		rs = append(rs, geometry.Square(d.center, d.radius))
	}
	if len(rs) == 0 {
		return geometry.R(0, 0, 320, 240)
	}
	out := rs[0]
	for _, r := range rs[1:] {
		out = out.Union(r)
	}
	return out
}

// parseHex reads "#rrggbb" or "#rgb".
func parseHex(s string) (color.RGBA, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}

// tint mixes c with white; f is the share of c.
func tint(c color.RGBA, f float64) color.RGBA {
	mix := func(v uint8) uint8 { return uint8(float64(v)*f + 255*(1-f)) }
	return color.RGBA{R: mix(c.R), G: mix(c.G), B: mix(c.B), A: 0xff}
}
