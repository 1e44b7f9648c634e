//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"image/color"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"

	"wibeboard/internal/board"
	"wibeboard/internal/connector"
	"wibeboard/internal/events"
	"wibeboard/internal/geometry"
	"wibeboard/internal/registry"
)

var (
	colBackground  = color.RGBA{R: 0xf8, G: 0xfa, B: 0xfc, A: 0xff}
	colInk         = color.RGBA{R: 0x33, G: 0x41, B: 0x55, A: 0xff}
	colEdge        = color.RGBA{R: 0x64, G: 0x74, B: 0x8b, A: 0xff}
	colPlaceholder = color.RGBA{R: 0x94, G: 0xa3, B: 0xb8, A: 0xff}
	colGhost       = color.RGBA{R: 0xcb, G: 0xd5, B: 0xe1, A: 0xc0}
	colButton      = color.RGBA{R: 0xe2, G: 0xe8, B: 0xf0, A: 0xff}
)

// BoardCanvas is a Fyne widget that forwards raw input to a board.Board and
// draws its scene. It redraws whenever the board reports a change.
type BoardCanvas struct {
	widget.BaseWidget
	b *board.Board

	// armed is a widget token picked in the sidebar; the next primary tap on
	// the canvas drops it there.
	armed string
	// pressed tracks the mouse button between MouseDown and MouseUp.
	pressed bool
}

func NewBoardCanvas(b *board.Board) *BoardCanvas {
	c := &BoardCanvas{b: b}
	c.ExtendBaseWidget(c)
	return c
}

// Arm selects a widget token for the next canvas tap, or clears it.
func (c *BoardCanvas) Arm(token string) { c.armed = token }

// Armed reports the armed token.
func (c *BoardCanvas) Armed() string { return c.armed }

func pt(p fyne.Position) geometry.Point { return geometry.Pt(p.X, p.Y) }

func (c *BoardCanvas) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	c.pressed = true
	c.b.PointerDown(pt(e.Position), events.Mouse, events.ButtonPrimary)
}

func (c *BoardCanvas) MouseUp(e *desktop.MouseEvent) {
	if !c.pressed {
		return
	}
	c.pressed = false
	c.b.PointerUp(pt(e.Position), events.Mouse)
}

func (c *BoardCanvas) MouseIn(e *desktop.MouseEvent)    { c.b.PointerMove(pt(e.Position), events.Mouse) }
func (c *BoardCanvas) MouseMoved(e *desktop.MouseEvent) { c.b.PointerMove(pt(e.Position), events.Mouse) }
func (c *BoardCanvas) MouseOut()                        {}

func (c *BoardCanvas) TouchDown(e *mobile.TouchEvent) {
	c.b.PointerDown(pt(e.Position), events.Touch, events.ButtonPrimary)
}

func (c *BoardCanvas) TouchUp(e *mobile.TouchEvent) { c.b.PointerUp(pt(e.Position), events.Touch) }

func (c *BoardCanvas) TouchCancel(e *mobile.TouchEvent) { c.b.PointerCancel(pt(e.Position)) }

// Dragged covers both mouse drags and finger moves; Fyne sends no
// MouseMoved while a button is held.
func (c *BoardCanvas) Dragged(e *fyne.DragEvent) {
	ptr := events.Touch
	if c.pressed {
		ptr = events.Mouse
	}
	c.b.PointerMove(pt(e.Position), ptr)
}

func (c *BoardCanvas) DragEnd() {}

func (c *BoardCanvas) Tapped(e *fyne.PointEvent) {
	if c.armed != "" && c.drop(pt(e.Position)) {
		return
	}
	c.b.Click(pt(e.Position))
	if cv := fyne.CurrentApp().Driver().CanvasForObject(c); cv != nil {
		cv.Focus(c)
	}
}

// drop emulates a sidebar drag-and-drop of the armed token.
func (c *BoardCanvas) drop(at geometry.Point) bool {
	w, tmpl, ok := c.b.Registry.Resolve(c.armed)
	if !ok {
		c.armed = ""
		return false
	}
	data, err := connector.EncodePayload(connector.Payload{Type: w.Type, Template: tmpl})
	if err != nil {
		return false
	}
	transfer := map[string]string{connector.PayloadKey: data}
	if !c.b.DragOver(at, transfer) {
		return false
	}
	c.armed = ""
	return c.b.Drop(at, transfer)
}

func (c *BoardCanvas) TappedSecondary(e *fyne.PointEvent) { c.b.ContextMenu(pt(e.Position)) }

// Scrolled zooms around the cursor.
func (c *BoardCanvas) Scrolled(e *fyne.ScrollEvent) {
	factor := float32(1.1)
	if e.Scrolled.DY < 0 {
		factor = 1 / factor
	}
	c.b.ZoomAt(pt(e.Position), factor)
}

func (c *BoardCanvas) FocusGained()     {}
func (c *BoardCanvas) FocusLost()       {}
func (c *BoardCanvas) TypedRune(_ rune) {}

func (c *BoardCanvas) TypedKey(e *fyne.KeyEvent) { c.b.Key(keyName(e.Name)) }

// keyName maps Fyne key names to DOM-style names.
func keyName(k fyne.KeyName) string {
	switch k {
	case fyne.KeyReturn, fyne.KeyEnter:
		return "Enter"
	}
	return string(k)
}

func (c *BoardCanvas) MinSize() fyne.Size { return fyne.NewSize(640, 480) }

func (c *BoardCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(colBackground)
	r := &boardRenderer{c: c, bg: bg}
	r.Refresh()
	return r
}

// boardRenderer rebuilds its objects from the scene on every refresh.
type boardRenderer struct {
	c       *BoardCanvas
	bg      *canvas.Rectangle
	objects []fyne.CanvasObject
}

func (r *boardRenderer) Destroy()                     {}
func (r *boardRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *boardRenderer) MinSize() fyne.Size           { return r.c.MinSize() }

func (r *boardRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))
}

func (r *boardRenderer) Refresh() {
	s := r.c.b.Scene()
	vp := s.Viewport
	objs := []fyne.CanvasObject{r.bg}

	rects := make(map[string]geometry.Rect, len(s.Nodes))
	for _, n := range s.Nodes {
		rects[n.ID] = vp.RectToScreen(n.Rect)
	}
	for _, e := range s.Edges {
		src, ok1 := rects[e.Source]
		dst, ok2 := rects[e.Target]
		if !ok1 || !ok2 {
			continue
		}
		l := canvas.NewLine(colEdge)
		if e.Kind != connector.RenderHost {
			l.StrokeColor = colPlaceholder
		}
		l.StrokeWidth = 2
		l.Position1 = fyne.NewPos(src.X+src.W, src.Y+src.H/2)
		l.Position2 = fyne.NewPos(dst.X, dst.Y+dst.H/2)
		objs = append(objs, l)
	}
	for _, n := range s.Nodes {
		objs = append(objs, r.node(n, rects[n.ID])...)
	}
	for _, b := range s.Menu.Buttons {
		circle := canvas.NewCircle(buttonColor(b.Item.Color))
		circle.StrokeColor = colInk
		if b.Highlighted || b.Expanded {
			circle.StrokeWidth = 2
		}
		if b.Progress > 0 {
			circle.StrokeWidth = 1 + 3*b.Progress
		}
		circle.Move(fyne.NewPos(b.Rect.X, b.Rect.Y))
		circle.Resize(fyne.NewSize(b.Rect.W, b.Rect.H))
		objs = append(objs, circle, label(b.Item.Label, b.Rect, true))
	}
	r.objects = objs
	r.Layout(r.c.Size())
	canvas.Refresh(r.c)
}

func (r *boardRenderer) node(n connector.RenderNode, sr geometry.Rect) []fyne.CanvasObject {
	rect := canvas.NewRectangle(color.White)
	rect.CornerRadius = 6
	rect.StrokeWidth = 1.5
	rect.Move(fyne.NewPos(sr.X, sr.Y))
	rect.Resize(fyne.NewSize(sr.W, sr.H))
	switch n.Kind {
	case connector.RenderGhost:
		rect.FillColor = color.Transparent
		rect.StrokeColor = colGhost
		return []fyne.CanvasObject{rect}
	case connector.RenderPlaceholder:
		rect.StrokeColor = colPlaceholder
		text := strconv.Itoa(n.GridCols) + "x" + strconv.Itoa(n.GridRows)
		if n.Hovered != "" {
			text = n.Hovered + " " + text
		}
		return []fyne.CanvasObject{rect, label(text, sr, false)}
	}
	rect.StrokeColor = widgetColor(r.c.b.Registry, n.Type)
	return []fyne.CanvasObject{rect, label(n.Label, sr, false)}
}

func label(text string, in geometry.Rect, centered bool) *canvas.Text {
	t := canvas.NewText(text, colInk)
	t.TextSize = 11
	if centered {
		t.Alignment = fyne.TextAlignCenter
		t.Move(fyne.NewPos(in.X, in.Y+in.H/2-8))
		t.Resize(fyne.NewSize(in.W, 16))
		return t
	}
	t.Move(fyne.NewPos(in.X+6, in.Y+4))
	return t
}

func widgetColor(reg *registry.Registry, typ string) color.Color {
	if w := reg.Get(typ); w != nil {
		if c, ok := hex(w.Color); ok {
			return c
		}
	}
	return colInk
}

func buttonColor(s string) color.Color {
	if c, ok := hex(s); ok {
		c.A = 0x60
		return c
	}
	return colButton
}

func hex(s string) (color.RGBA, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}
