/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package board is the headless canvas host. It owns the graph, viewport,
// listener bus, placeholder store, connector machine and radial menu, turns
// raw screen input into hit-tested events and applies the callbacks of both
// subsystems to the graph. UI bindings and scripted playback drive a Board;
// neither talks to the subsystems directly.
package board

import (
	"errors"
	"fmt"
	"log/slog"

	"wibeboard/internal/config"
	"wibeboard/internal/connector"
	"wibeboard/internal/events"
	"wibeboard/internal/flow"
	"wibeboard/internal/geometry"
	wblog "wibeboard/internal/log"
	"wibeboard/internal/placeholder"
	"wibeboard/internal/radial"
	"wibeboard/internal/registry"
	"wibeboard/internal/sched"
	"wibeboard/internal/telemetry"
)

// ErrNotPlaced is returned by picker operations outside the Placed phase;
// ErrNoPreset by an empty pick when no drop preset exists.
var (
	ErrNotPlaced = errors.New("no placed placeholder")
	ErrNoPreset  = errors.New("placeholder carries no preset widget")
)

// Options wires a Board. Only Scheduler is required.
type Options struct {
	Config    config.AppConfig
	Registry  *registry.Registry
	Scheduler sched.Scheduler
	Tracker   telemetry.Tracker
	NewNodeID func() string
}

// Board is a complete interactive canvas without any rendering.
type Board struct {
	Registry *registry.Registry
	Graph    *flow.Graph
	Viewport *flow.Viewport
	Bus      *events.Bus
	Store    *placeholder.Store
	Machine  *connector.Machine
	Menu     *radial.Menu

	// OnChange, if set, is called whenever the scene may have changed.
	OnChange func()

	tracker telemetry.Tracker
	log     *slog.Logger

	hover     string // menu button under the mouse
	pressed   string // menu button under the last pointer down
	menuTouch bool   // touch drag started on a menu button in swipe mode
}

type nopTracker struct{}

func (nopTracker) Event(string, map[string]any) {}

// New assembles a board from cfg. Config errors (bad activation mode,
// directions or topology file) are returned; the zero config is valid.
func New(opts Options) (*Board, error) {
	if opts.Scheduler == nil {
		return nil, errors.New("board: scheduler is required")
	}
	cfg := opts.Config
	if cfg.ConfigVersion == 0 {
		cfg = config.Defaults()
	}
	base := opts.Registry
	if base == nil {
		var err error
		if base, err = registry.Builtin(); err != nil {
			return nil, fmt.Errorf("load widget catalogue: %w", err)
		}
	}
	reg := registry.New(GridFrom(cfg.Canvas, base.Grid()), base.All())
	menuCfg, err := MenuConfig(cfg)
	if err != nil {
		return nil, err
	}
	topo, err := Topology(cfg)
	if err != nil {
		return nil, err
	}

	b := &Board{
		Registry: reg,
		Graph:    flow.NewGraph(reg),
		Viewport: flow.NewViewport(),
		Bus:      events.NewBus(),
		Store:    placeholder.NewStore(reg.Grid()),
		tracker:  opts.Tracker,
		log:      wblog.WithComponent("board"),
	}
	if b.tracker == nil {
		b.tracker = nopTracker{}
	}
	mo := MachineOptions(cfg, reg.Grid())
	b.Graph.NewID = opts.NewNodeID
	mo.NewNodeID = b.Graph.NextID
	b.Machine = connector.New(b.Bus, opts.Scheduler, b.Viewport, b.Store, connectorHost{b}, mo)
	b.Menu = radial.New(menuCfg, topo, menuHost{b}, flow.ScreenLocator{Graph: b.Graph, Viewport: b.Viewport}, opts.Scheduler)
	b.Menu.OnChange = b.changed
	return b, nil
}

func (b *Board) changed() {
	if b.OnChange != nil {
		b.OnChange()
	}
}

// Close detaches every listener and timer.
func (b *Board) Close() {
	b.Menu.Close()
	b.Machine.Close()
}

// SetEditMode toggles drag-and-drop entry.
func (b *Board) SetEditMode(on bool) { b.Machine.SetEditMode(on) }

// HitTest resolves the element under screen point p: menu buttons first,
// then placeholders, host handles and nodes, the ghost and finally the canvas.
func (b *Board) HitTest(p geometry.Point) events.Target {
	if id := b.Menu.ButtonAt(p); id != "" {
		return events.Target{Kind: events.TargetMenu, ID: id}
	}
	lp := b.Viewport.ScreenToLogical(p)
	phs := b.Store.Nodes()
	for i := len(phs) - 1; i >= 0; i-- {
		if phs[i].Rect().Contains(lp) {
			return events.Target{Kind: events.TargetPlaceholder, ID: phs[i].ID}
		}
	}
	if t, ok := b.Graph.HitTest(lp); ok {
		return t
	}
	if g, _, ok := b.Machine.Ghost(); ok && g.Rect.Contains(lp) {
		return events.Target{Kind: events.TargetGhost, ID: g.ID}
	}
	return events.Target{Kind: events.TargetCanvas}
}

func (b *Board) dispatch(e *events.Event) bool {
	b.Bus.Dispatch(e)
	b.changed()
	return e.Prevented()
}

func (b *Board) swipe() bool { return b.Menu.Strategy().Mode() == radial.ModeSwipe }

// PointerDown presses at screen point p.
func (b *Board) PointerDown(p geometry.Point, ptr events.PointerType, button int) {
	t := b.HitTest(p)
	b.pressed = ""
	if t.Kind == events.TargetMenu {
		b.pressed = t.ID
		b.Menu.PointerDown(t.ID)
		if ptr == events.Touch && b.swipe() {
			b.menuTouch = true
			b.Menu.TouchMove(p)
		}
	}
	b.dispatch(&events.Event{Kind: events.PointerDown, Screen: p, Pointer: ptr, Button: button, Target: t})
}

// PointerMove moves the pointer. Touch drags that started on a menu button
// in swipe mode are routed to the menu's hit index only.
func (b *Board) PointerMove(p geometry.Point, ptr events.PointerType) {
	if b.menuTouch {
		b.Menu.TouchMove(p)
		b.changed()
		return
	}
	t := b.HitTest(p)
	if ptr != events.Touch {
		b.trackHover(t)
	}
	b.dispatch(&events.Event{Kind: events.PointerMove, Screen: p, Pointer: ptr, Target: t})
}

func (b *Board) trackHover(t events.Target) {
	id := ""
	if t.Kind == events.TargetMenu {
		id = t.ID
	}
	if id == b.hover {
		return
	}
	if b.hover != "" {
		b.Menu.PointerLeave(b.hover)
	}
	b.hover = id
	if id != "" {
		b.Menu.PointerEnter(id)
	}
}

// PointerUp releases the pointer. A swipe drag ends here and activates the
// menu button under the finger; no click follows it. A held menu button only
// fires when released over itself.
func (b *Board) PointerUp(p geometry.Point, ptr events.PointerType) {
	if b.menuTouch {
		b.menuTouch = false
		b.pressed = ""
		b.Menu.TouchEnd(p)
		b.dispatch(&events.Event{Kind: events.PointerUp, Screen: p, Pointer: ptr, Target: events.Target{Kind: events.TargetMenu}})
		return
	}
	t := b.HitTest(p)
	if b.pressed != "" {
		// Releasing away from the pressed button aborts it.
		if t.Kind == events.TargetMenu && t.ID == b.pressed {
			b.Menu.PointerUp(b.pressed)
		} else {
			b.Menu.PointerCancel(b.pressed)
		}
		b.pressed = ""
	}
	b.dispatch(&events.Event{Kind: events.PointerUp, Screen: p, Pointer: ptr, Target: t})
}

// PointerCancel aborts the current pointer gesture.
func (b *Board) PointerCancel(p geometry.Point) {
	if b.pressed != "" {
		b.Menu.PointerCancel(b.pressed)
		b.pressed = ""
	}
	if b.menuTouch {
		b.menuTouch = false
		b.Menu.Strategy().Reset()
	}
	b.dispatch(&events.Event{Kind: events.PointerCancel, Screen: p, Target: b.HitTest(p)})
}

// Click is a completed primary click or tap at p.
func (b *Board) Click(p geometry.Point) {
	t := b.HitTest(p)
	if t.Kind == events.TargetMenu {
		b.Menu.Click(t.ID)
	}
	b.dispatch(&events.Event{Kind: events.Click, Screen: p, Button: events.ButtonPrimary, Target: t})
}

// Key delivers a key press. It reports whether anything consumed it.
func (b *Board) Key(key string) bool {
	if b.Menu.KeyDown(key) {
		b.changed()
		return true
	}
	return b.dispatch(&events.Event{Kind: events.KeyDown, Key: key})
}

// ContextMenu is a secondary click at p. It reports whether the host's own
// context menu must be suppressed.
func (b *Board) ContextMenu(p geometry.Point) bool {
	return b.dispatch(&events.Event{Kind: events.ContextMenu, Screen: p, Button: events.ButtonSecondary, Target: b.HitTest(p)})
}

// DragOver reports whether a drop of transfer at p would be accepted.
func (b *Board) DragOver(p geometry.Point, transfer map[string]string) bool {
	return b.dispatch(&events.Event{Kind: events.DragOver, Screen: p, Transfer: transfer, Target: b.HitTest(p)})
}

// Drop drops transfer at p and reports whether it was accepted.
func (b *Board) Drop(p geometry.Point, transfer map[string]string) bool {
	return b.dispatch(&events.Event{Kind: events.Drop, Screen: p, Transfer: transfer, Target: b.HitTest(p)})
}

// PanBy and ZoomAt move the viewport. The menu follows on its next poll.
func (b *Board) PanBy(d geometry.Point) {
	b.Viewport.PanBy(d)
	b.changed()
}

func (b *Board) ZoomAt(p geometry.Point, factor float32) {
	b.Viewport.ZoomAt(p, factor)
	b.changed()
}

// AddNode places a host node at a logical position using the token's
// template size. It is how scripts and the UI seed a board.
func (b *Board) AddNode(id, token, label string, at geometry.Point) (string, error) {
	w, tmpl, ok := b.Registry.Resolve(token)
	if !ok {
		return "", fmt.Errorf("add node %q: %w", token, flow.ErrUnknownToken)
	}
	g := b.Registry.Grid()
	cols, rows := g.DefaultCols, g.DefaultRows
	if tmpl.Cols > 0 {
		cols = tmpl.Cols
	}
	if tmpl.Rows > 0 {
		rows = tmpl.Rows
	}
	if label == "" {
		label = tmpl.Label
	}
	id, err := b.Graph.Add(flow.Node{
		ID: id, Type: w.Type, Label: label, Template: tmpl, Position: at,
		Width: float32(cols) * g.Cell, Height: float32(rows) * g.Cell,
	})
	if err != nil {
		return "", err
	}
	b.changed()
	return id, nil
}

func (b *Board) placed() (connector.Placed, error) {
	p, ok := b.Machine.Phase().(connector.Placed)
	if !ok {
		return connector.Placed{}, ErrNotPlaced
	}
	return p, nil
}

// Preset returns the widget a drop carried into the placed placeholder.
func (b *Board) Preset() (widgetType string, tmpl registry.Template, ok bool) {
	p, err := b.placed()
	if err != nil {
		return "", registry.Template{}, false
	}
	n, found := b.Store.Get(p.PlaceholderID)
	if !found || n.PresetType == "" {
		return "", registry.Template{}, false
	}
	return n.PresetType, n.PresetTemplate, true
}

// Pick selects a widget on the placed placeholder, e.g. "script:py". An
// empty token picks the preset a drop carried, template untouched.
func (b *Board) Pick(token string) error {
	if _, err := b.placed(); err != nil {
		return err
	}
	if token == "" {
		typ, tmpl, ok := b.Preset()
		if !ok {
			return ErrNoPreset
		}
		b.Machine.Select(typ, tmpl)
		b.changed()
		return nil
	}
	w, tmpl, ok := b.Registry.Resolve(token)
	if !ok {
		return fmt.Errorf("pick %q: %w", token, flow.ErrUnknownToken)
	}
	b.Machine.Select(w.Type, tmpl)
	b.changed()
	return nil
}

// PickerHover shows widgetType as the picker's hovered choice.
func (b *Board) PickerHover(widgetType string) error {
	p, err := b.placed()
	if err != nil {
		return err
	}
	b.Store.Publish(placeholder.HoverChanged{ID: p.PlaceholderID, WidgetType: widgetType})
	b.changed()
	return nil
}

// PickerResize resizes the placed placeholder to cols x rows cells, keeping
// its top-left corner.
func (b *Board) PickerResize(cols, rows int) error {
	p, err := b.placed()
	if err != nil {
		return err
	}
	n, ok := b.Store.Get(p.PlaceholderID)
	if !ok {
		return ErrNotPlaced
	}
	g := b.Store.Grid()
	cols, rows = max(cols, g.Min), max(rows, g.Min)
	b.Store.Publish(placeholder.ResizeRequested{ID: p.PlaceholderID, Rect: geometry.GridRectAt(n.Position, cols, rows, g.Cell)})
	b.changed()
	return nil
}

// PickerCancel dismisses the placed placeholder from its picker.
func (b *Board) PickerCancel() error {
	p, err := b.placed()
	if err != nil {
		return err
	}
	b.Store.Publish(placeholder.CancelRequested{ID: p.PlaceholderID})
	b.changed()
	return nil
}

// Scene is a snapshot of everything to draw.
type Scene struct {
	Phase    connector.PhaseType
	Nodes    []connector.RenderNode
	Edges    []connector.RenderEdge
	Menu     radial.View
	Viewport flow.Viewport
}

// Scene returns the merged render list in logical coordinates and the menu
// view in screen coordinates.
func (b *Board) Scene() Scene {
	nodes, edges := b.Machine.RenderList(b.Graph.Nodes(), b.Graph.Edges())
	return Scene{
		Phase:    b.Machine.Phase().Type(),
		Nodes:    nodes,
		Edges:    edges,
		Menu:     b.Menu.View(),
		Viewport: *b.Viewport,
	}
}

// Describe is a one-line state dump for logs and crash reports.
func (b *Board) Describe() string {
	menu := b.Menu.NodeID()
	if !b.Menu.Visible() {
		menu = "-"
	}
	return fmt.Sprintf("phase=%s nodes=%d edges=%d placeholders=%d menu=%s expanded=%q listeners=%d",
		b.Machine.Phase().Type(), len(b.Graph.Nodes()), len(b.Graph.Edges()), b.Store.Len(), menu, b.Menu.Expansion(), b.Bus.Count())
}
