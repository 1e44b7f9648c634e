/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package connector implements the node-creation protocol of the board:
//
//	Idle -> Positioning -> Sizing -> Placed -> Idle
//
// A drag from a node's output handle starts Positioning; a click on empty
// canvas drops a placeholder and starts Sizing; a second click freezes the
// size and reveals the widget picker (Placed); picking a widget commits the
// node to the host. Escape or the context menu cancels from any phase, and a
// widget dropped from the sidebar enters Sizing directly.
//
// Listeners that only matter inside a phase are attached on entry and
// released on exit, so the bus returns to its baseline after every gesture.
// The same pointer stream also drives node selection (click or long-press
// toggles the radial menu) while the machine is idle.
package connector

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"wibeboard/internal/events"
	"wibeboard/internal/geometry"
	wblog "wibeboard/internal/log"
	"wibeboard/internal/placeholder"
	"wibeboard/internal/registry"
	"wibeboard/internal/sched"
)

// Defaults for Options.
const (
	DefaultLongPress     = 500 * time.Millisecond
	DefaultMoveThreshold = 5
)

// NodeCreated is reported when a widget is picked on a placed placeholder.
type NodeCreated struct {
	NodeID       string
	WidgetType   string
	Template     registry.Template
	Rect         geometry.Rect
	SourceNodeID string
}

// Host receives the machine's results. The machine never mutates host nodes.
type Host interface {
	NodeCreated(ev NodeCreated)
	NodeCancelled(placeholderID string)
	// MenuToggled reports the radial menu target; visible=false hides it.
	MenuToggled(nodeID string, visible bool)
}

// Converter maps screen points to logical (flow) points.
type Converter interface {
	ScreenToLogical(p geometry.Point) geometry.Point
}

// Options tunes the machine.
type Options struct {
	Grid registry.Grid
	// LongPress is the hold time that selects a node.
	LongPress time.Duration
	// MoveThreshold is the screen distance that cancels a pending long-press.
	MoveThreshold float32
	// EditMode enables drag-and-drop entry.
	EditMode bool
	// NewNodeID generates ids for created nodes.
	NewNodeID func() string
}

func (o Options) withDefaults() Options {
	if o.Grid.Cell <= 0 {
		o.Grid = registry.DefaultGrid()
	}
	if o.LongPress <= 0 {
		o.LongPress = DefaultLongPress
	}
	if o.MoveThreshold <= 0 {
		o.MoveThreshold = DefaultMoveThreshold
	}
	if o.NewNodeID == nil {
		o.NewNodeID = func() string { return "node-" + uuid.NewString() }
	}
	return o
}

// Machine is the connector state machine. It is driven from the UI loop.
type Machine struct {
	bus   *events.Bus
	clock sched.Scheduler
	conv  Converter
	store *placeholder.Store
	host  Host
	opts  Options
	log   *slog.Logger

	phase      Phase
	base       []events.Handle
	scope      *events.Scope
	unsubStore func()

	press        sched.Timer
	pressNode    string
	pressStart   geometry.Point
	didLongPress bool
	menuNode     string
	closed       bool
}

// New attaches the machine's permanent listeners to bus and returns it in Idle.
func New(bus *events.Bus, clock sched.Scheduler, conv Converter, store *placeholder.Store, host Host, opts Options) *Machine {
	m := &Machine{
		bus:   bus,
		clock: clock,
		conv:  conv,
		store: store,
		host:  host,
		opts:  opts.withDefaults(),
		log:   wblog.WithComponent("connector"),
		phase: Idle{},
		scope: bus.Scope(),
	}
	m.base = []events.Handle{
		bus.On(events.PointerDown, m.onPointerDown),
		bus.On(events.PointerMove, m.onPressMove),
		bus.On(events.PointerUp, m.onPressEnd),
		bus.On(events.PointerCancel, m.onPressEnd),
		bus.On(events.Click, m.onSelectClick),
		bus.On(events.DragOver, m.onDragOver),
		bus.On(events.Drop, m.onDrop),
	}
	m.unsubStore = store.Subscribe(m.onPickerEvent)
	return m
}

// Phase returns the active phase.
func (m *Machine) Phase() Phase { return m.phase }

// MenuNode returns the node whose radial menu is visible, or "".
func (m *Machine) MenuNode() string { return m.menuNode }

// SetEditMode toggles drag-and-drop entry.
func (m *Machine) SetEditMode(on bool) { m.opts.EditMode = on }

func (m *Machine) logical(e *events.Event) geometry.Point { return m.conv.ScreenToLogical(e.Screen) }

// setPhase swaps the phase and its scoped listeners.
func (m *Machine) setPhase(p Phase) {
	from := m.phase.Type()
	m.scope.Release()
	m.phase = p
	switch p.Type() {
	case PhasePositioning:
		m.scope.On(events.PointerMove, m.onPositioningMove)
		m.scope.On(events.Click, m.onPositioningClick)
	case PhaseSizing:
		m.scope.On(events.PointerMove, m.onSizingMove)
		m.scope.On(events.Click, m.onSizingClick)
	}
	if p.Type() != PhaseIdle {
		m.scope.On(events.KeyDown, m.onKeyDown)
		m.scope.On(events.ContextMenu, m.onContextMenu)
	}
	m.log.Debug("phase", slog.String("from", from.String()), slog.String("to", p.Type().String()))
}

// Begin enters Positioning from sourceNodeID's handle at a logical point.
// An empty sourceNodeID starts from empty space. It is a no-op unless Idle.
func (m *Machine) Begin(sourceNodeID string, at geometry.Point) bool {
	if m.closed || m.phase.Type() != PhaseIdle {
		return false
	}
	m.cancelPress()
	m.hideMenu()
	m.setPhase(Positioning{SourceNodeID: sourceNodeID, SourceLogicalPos: at, CursorLogicalPos: at})
	return true
}

// enterSizing creates the placeholder and starts sizing from its anchor.
func (m *Machine) enterSizing(sourceNodeID string, anchor geometry.Point) string {
	id := m.store.Create(sourceNodeID, anchor)
	m.setPhase(Sizing{PlaceholderID: id, SourceNodeID: sourceNodeID, AnchorLogicalPos: anchor})
	return id
}

// Cancel abandons the current gesture. From Placed the host is told the
// placeholder was cancelled. It is a no-op when Idle.
func (m *Machine) Cancel() {
	switch p := m.phase.(type) {
	case Positioning:
		m.setPhase(Idle{})
	case Sizing:
		m.store.Remove(p.PlaceholderID)
		m.setPhase(Idle{})
	case Placed:
		m.store.Remove(p.PlaceholderID)
		m.setPhase(Idle{})
		m.host.NodeCancelled(p.PlaceholderID)
	}
}

// Select commits the placed placeholder with the chosen widget. It goes
// through the store so it follows the same path as the picker UI.
func (m *Machine) Select(widgetType string, tmpl registry.Template) bool {
	p, ok := m.phase.(Placed)
	if !ok {
		return false
	}
	return m.store.Publish(placeholder.WidgetSelected{ID: p.PlaceholderID, WidgetType: widgetType, Template: tmpl})
}

func (m *Machine) commit(p Placed, widgetType string, tmpl registry.Template) {
	n, ok := m.store.Get(p.PlaceholderID)
	if !ok {
		return
	}
	m.store.Remove(p.PlaceholderID)
	m.setPhase(Idle{})
	ev := NodeCreated{
		NodeID:       m.opts.NewNodeID(),
		WidgetType:   widgetType,
		Template:     tmpl,
		Rect:         n.Rect(),
		SourceNodeID: p.SourceNodeID,
	}
	m.log.Debug("node created", slog.String("node", ev.NodeID), slog.String("type", widgetType))
	m.host.NodeCreated(ev)
}

// --- phase-scoped handlers ---

func (m *Machine) onKeyDown(e *events.Event) {
	if e.Key == "Escape" {
		m.Cancel()
	}
}

func (m *Machine) onContextMenu(e *events.Event) {
	e.PreventDefault()
	m.Cancel()
}

func (m *Machine) onPositioningMove(e *events.Event) {
	p, ok := m.phase.(Positioning)
	if !ok {
		return
	}
	p.CursorLogicalPos = m.logical(e)
	m.phase = p
}

// blocksCreation reports targets a creation click must ignore.
func blocksCreation(t events.Target) bool {
	switch t.Kind {
	case events.TargetHandle, events.TargetNode, events.TargetMenu:
		return true
	}
	return false
}

func (m *Machine) onPositioningClick(e *events.Event) {
	p, ok := m.phase.(Positioning)
	if !ok || blocksCreation(e.Target) || e.Target.Kind == events.TargetPlaceholder {
		return
	}
	m.enterSizing(p.SourceNodeID, m.logical(e))
}

func (m *Machine) onSizingMove(e *events.Event) {
	p, ok := m.phase.(Sizing)
	if !ok {
		return
	}
	g := m.opts.Grid
	m.store.Resize(p.PlaceholderID, geometry.RectFromAnchorAndPointer(p.AnchorLogicalPos, m.logical(e), g.Cell, g.Min))
}

func (m *Machine) onSizingClick(e *events.Event) {
	p, ok := m.phase.(Sizing)
	if !ok || blocksCreation(e.Target) {
		return
	}
	n, ok := m.store.Get(p.PlaceholderID)
	if !ok {
		m.setPhase(Idle{})
		return
	}
	m.store.MarkSizingDone(p.PlaceholderID)
	m.setPhase(Placed{
		PlaceholderID:    p.PlaceholderID,
		SourceNodeID:     p.SourceNodeID,
		AnchorLogicalPos: p.AnchorLogicalPos,
		GridCols:         n.GridCols,
		GridRows:         n.GridRows,
	})
}

// onPickerEvent handles events raised by the placeholder's picker UI.
func (m *Machine) onPickerEvent(ev placeholder.Event) {
	p, ok := m.phase.(Placed)
	if !ok || ev.PlaceholderID() != p.PlaceholderID {
		return
	}
	switch v := ev.(type) {
	case placeholder.WidgetSelected:
		m.commit(p, v.WidgetType, v.Template)
	case placeholder.CancelRequested:
		m.Cancel()
	case placeholder.HoverChanged:
		m.store.SetHovered(p.PlaceholderID, v.WidgetType)
	case placeholder.ResizeRequested:
		m.store.Resize(p.PlaceholderID, v.Rect)
		p.GridCols, p.GridRows = v.Rect.Cols, v.Rect.Rows
		m.phase = p
	}
}

// --- permanent handlers ---

func (m *Machine) onPointerDown(e *events.Event) {
	switch e.Target.Kind {
	case events.TargetHandle:
		m.Begin(e.Target.ID, m.logical(e))
	case events.TargetNode:
		m.didLongPress = false
		if m.phase.Type() != PhaseIdle {
			return
		}
		m.startPress(e.Target.ID, e.Screen)
	}
}

func (m *Machine) startPress(nodeID string, at geometry.Point) {
	m.cancelPress()
	m.pressNode, m.pressStart = nodeID, at
	m.press = m.clock.AfterFunc(m.opts.LongPress, func() {
		m.press = nil
		if m.phase.Type() != PhaseIdle {
			return
		}
		m.didLongPress = true
		m.toggleMenu(m.pressNode)
	})
}

func (m *Machine) cancelPress() {
	if m.press != nil {
		m.press.Stop()
		m.press = nil
	}
}

func (m *Machine) onPressMove(e *events.Event) {
	if m.press != nil && e.Screen.Dist(m.pressStart) > m.opts.MoveThreshold {
		m.cancelPress()
	}
}

func (m *Machine) onPressEnd(*events.Event) { m.cancelPress() }

// onSelectClick toggles the radial menu on node clicks while idle.
func (m *Machine) onSelectClick(e *events.Event) {
	if m.phase.Type() != PhaseIdle {
		return
	}
	switch e.Target.Kind {
	case events.TargetNode:
		if m.didLongPress {
			m.didLongPress = false
			return
		}
		m.toggleMenu(e.Target.ID)
	case events.TargetCanvas, events.TargetGhost:
		m.hideMenu()
	}
}

func (m *Machine) toggleMenu(nodeID string) {
	if m.menuNode == nodeID {
		m.hideMenu()
		return
	}
	m.menuNode = nodeID
	m.host.MenuToggled(nodeID, true)
}

func (m *Machine) hideMenu() {
	if m.menuNode == "" {
		return
	}
	id := m.menuNode
	m.menuNode = ""
	m.host.MenuToggled(id, false)
}

// HideMenu closes the radial menu, e.g. after it dismissed itself.
func (m *Machine) HideMenu() { m.hideMenu() }

func (m *Machine) onDragOver(e *events.Event) {
	if !m.opts.EditMode || m.phase.Type() != PhaseIdle {
		return
	}
	if _, ok := e.Transfer[PayloadKey]; ok {
		e.PreventDefault()
	}
}

// onDrop enters Sizing at the drop point without a source node.
func (m *Machine) onDrop(e *events.Event) {
	if !m.opts.EditMode || m.phase.Type() != PhaseIdle {
		return
	}
	data, ok := e.Transfer[PayloadKey]
	if !ok {
		return
	}
	e.PreventDefault()
	p, err := ParsePayload(data)
	if err != nil {
		m.log.Debug("drop discarded", slog.Any("err", err))
		return
	}
	m.cancelPress()
	m.hideMenu()
	id := m.enterSizing("", m.logical(e))
	m.store.SetHovered(id, p.Type)
	m.store.SetPreset(id, p.Type, p.Template)
}

// Close releases every listener and timer and drops any live placeholder.
func (m *Machine) Close() {
	if m.closed {
		return
	}
	m.closed = true
	m.cancelPress()
	if id := placeholderOf(m.phase); id != "" {
		m.store.Remove(id)
	}
	m.setPhase(Idle{})
	for _, h := range m.base {
		h.Remove()
	}
	m.base = nil
	if m.unsubStore != nil {
		m.unsubStore()
	}
}
