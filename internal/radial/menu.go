/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package radial implements the contextual action menu shown around a
// selected node: four primary buttons (configure, add after, add before,
// rename) fanning out into nested sub-menus. Branches are revealed by click,
// hold or swipe depending on the activation Mode; leaves call back into the
// host. The menu never touches the graph itself.
package radial

import (
	"log/slog"
	"slices"
	"strings"

	"wibeboard/internal/geometry"
	wblog "wibeboard/internal/log"
	"wibeboard/internal/sched"
)

// Host receives menu actions.
type Host interface {
	AddBefore(nodeID, token string)
	AddAfter(nodeID, token string)
	Configure(nodeID, action string)
	Rename(nodeID, label string)
	// Dismiss asks the host to close the menu without an action.
	Dismiss()
}

// Locator resolves a node's screen rectangle; ok is false while the node
// cannot be measured.
type Locator interface {
	Locate(nodeID string) (geometry.Rect, bool)
}

// Menu is a radial menu bound to one node at a time. It is driven from the
// UI loop.
type Menu struct {
	cfg   Config
	topo  Topology
	host  Host
	loc   Locator
	sch   sched.Scheduler
	strat Strategy
	log   *slog.Logger

	// OnChange, if set, is called after any visible state change.
	OnChange func()

	nodeID  string
	label   string
	visible bool
	rect    geometry.Rect
	hasRect bool
	poll    sched.Timer

	exp       []string
	highlight string

	renaming   bool
	renameText string
}

// New creates a hidden menu.
func New(cfg Config, topo Topology, host Host, loc Locator, sch sched.Scheduler) *Menu {
	m := &Menu{
		cfg:  cfg.withDefaults(),
		topo: topo,
		host: host,
		loc:  loc,
		sch:  sch,
		log:  wblog.WithComponent("radial"),
	}
	m.strat = newStrategy(m.cfg.Mode, m, m.cfg)
	return m
}

// Strategy returns the activation strategy chosen for the menu's mode.
func (m *Menu) Strategy() Strategy { return m.strat }

func (m *Menu) Visible() bool  { return m.visible }
func (m *Menu) NodeID() string { return m.nodeID }

// Show binds the menu to nodeID and starts polling its rectangle.
func (m *Menu) Show(nodeID, label string) {
	m.Hide()
	m.nodeID, m.label = nodeID, label
	m.visible = true
	m.refresh()
	m.poll = m.sch.Every(m.cfg.PollInterval, m.refresh)
	m.log.Debug("menu shown", slog.String("node", nodeID))
	m.changed()
}

// Hide stops polling and drops all transient state.
func (m *Menu) Hide() {
	if m.poll != nil {
		m.poll.Stop()
		m.poll = nil
	}
	m.strat.Reset()
	if !m.visible {
		return
	}
	m.visible = false
	m.hasRect = false
	m.exp = nil
	m.renaming = false
	m.renameText = ""
	m.changed()
}

// Close is Hide for teardown.
func (m *Menu) Close() { m.Hide() }

func (m *Menu) refresh() {
	r, ok := m.loc.Locate(m.nodeID)
	if ok == m.hasRect && r == m.rect {
		return
	}
	m.rect, m.hasRect = r, ok
	m.changed()
}

func (m *Menu) changed() {
	if m.OnChange != nil {
		m.OnChange()
	}
}

func (m *Menu) clock() sched.Scheduler { return m.sch }

// View lays out the menu for drawing. It is empty while hidden or while the
// node's rectangle is unknown.
func (m *Menu) View() View {
	if !m.visible || !m.hasRect {
		return View{}
	}
	v := View{Visible: true, NodeID: m.nodeID, Target: m.rect}
	if m.renaming {
		v.Rename = &RenameView{
			Text:   m.renameText,
			Anchor: geometry.Pt(m.rect.Center().X, m.rect.Y+m.rect.H+m.cfg.gap()),
		}
		return v
	}
	v.Buttons = Layout(m.topo, m.rect, m.exp, m.cfg)
	for i := range v.Buttons {
		b := &v.Buttons[i]
		b.Highlighted = b.ID == m.highlight
		b.Progress = m.strat.Progress(b.ID)
	}
	return v
}

// Index builds a hit index over the currently laid out buttons.
func (m *Menu) Index() *HitIndex {
	idx := &HitIndex{}
	for _, b := range m.View().Buttons {
		idx.Add(b.ID, b.Rect)
	}
	return idx
}

func (m *Menu) buttonAt(p geometry.Point) string {
	id, _ := m.Index().At(p)
	return id
}

// ButtonAt returns the id of the button under screen point p, or "".
func (m *Menu) ButtonAt(p geometry.Point) string { return m.buttonAt(p) }

// Expanded reports whether the button id is on the expanded path.
func (m *Menu) Expanded(id string) bool {
	keys := splitID(id)
	return len(keys) > 0 && len(keys) <= len(m.exp) && slices.Equal(keys, m.exp[:len(keys)])
}

// Expansion returns the expanded path as a button id, or "".
func (m *Menu) Expansion() string { return strings.Join(m.exp, PathSep) }

// Renaming reports whether the rename field is open.
func (m *Menu) Renaming() bool { return m.renaming }

func (m *Menu) setExpansion(keys []string) {
	if slices.Equal(keys, m.exp) {
		return
	}
	m.exp = slices.Clone(keys)
	m.changed()
}

func (m *Menu) setHighlight(id string) {
	if id == m.highlight {
		return
	}
	m.highlight = id
	m.changed()
}

func (m *Menu) isOuter(id string) bool { return !strings.Contains(id, PathSep) }

func (m *Menu) isBranch(id string) bool {
	_, it, ok := m.topo.Lookup(id)
	return ok && it.IsBranch()
}

// hover expands a branch's children and collapses everything that is not on
// its path. Hovering a leaf collapses its siblings' sub-menus.
func (m *Menu) hover(id string) {
	if !m.visible || m.renaming {
		return
	}
	_, it, ok := m.topo.Lookup(id)
	if !ok {
		return
	}
	keys := splitID(id)
	if !it.IsBranch() {
		keys = keys[:len(keys)-1]
	}
	m.setExpansion(keys)
}

// hold runs when a hold completes. Branches expand at once; any other button
// is only armed and fires when released over it.
func (m *Menu) hold(id string) {
	if m.isBranch(id) {
		m.hover(id)
		return
	}
	m.changed()
}

// collapse closes an open branch that carries no action of its own, leaving
// its parent path expanded. It reports whether anything closed.
func (m *Menu) collapse(id string) bool {
	if !m.visible || m.renaming || !m.Expanded(id) {
		return false
	}
	_, it, ok := m.topo.Lookup(id)
	if !ok || !it.IsBranch() || it.Action != "" {
		return false
	}
	keys := splitID(id)
	m.setExpansion(keys[:len(keys)-1])
	return true
}

// activate is a definitive press of a button.
func (m *Menu) activate(id string) {
	if !m.visible || m.renaming {
		return
	}
	p, it, ok := m.topo.Lookup(id)
	if !ok {
		return
	}
	if m.isOuter(id) {
		if p.Role == RoleRename {
			m.startRename()
			return
		}
		if it.Action == "" {
			m.setExpansion(splitID(id))
			return
		}
	}
	if it.Action != "" {
		m.commit(p.Role, it.Action)
		return
	}
	m.setExpansion(splitID(id))
}

func (m *Menu) commit(role Role, action string) {
	node := m.nodeID
	m.strat.Reset()
	m.setExpansion(nil)
	m.log.Debug("menu action", slog.String("node", node), slog.String("role", role.String()), slog.String("action", action))
	switch role {
	case RoleAddAfter:
		m.host.AddAfter(node, action)
	case RoleAddBefore:
		m.host.AddBefore(node, action)
	case RoleConfigure:
		m.host.Configure(node, action)
	}
}

func (m *Menu) startRename() {
	m.strat.Reset()
	m.exp = nil
	m.renaming = true
	m.renameText = m.label
	m.changed()
}

// SetRenameText updates the rename field.
func (m *Menu) SetRenameText(s string) {
	if m.renaming {
		m.renameText = s
		m.changed()
	}
}

// RenameBlur commits the rename field when it loses focus.
func (m *Menu) RenameBlur() { m.commitRename() }

func (m *Menu) commitRename() {
	if !m.renaming {
		return
	}
	text := strings.TrimSpace(m.renameText)
	m.renaming = false
	m.renameText = ""
	m.changed()
	if text == "" || text == m.label {
		return
	}
	m.label = text
	m.host.Rename(m.nodeID, text)
}

func (m *Menu) cancelRename() {
	if !m.renaming {
		return
	}
	m.renaming = false
	m.renameText = ""
	m.changed()
}

// KeyDown handles Enter/Escape for the rename field and Escape to dismiss.
// It reports whether the key was consumed.
func (m *Menu) KeyDown(key string) bool {
	if !m.visible {
		return false
	}
	switch {
	case m.renaming && key == "Enter":
		m.commitRename()
	case m.renaming && key == "Escape":
		m.cancelRename()
	case key == "Escape":
		m.host.Dismiss()
	default:
		return false
	}
	return true
}

// Per-button input, forwarded to the activation strategy.

func (m *Menu) PointerDown(id string)   { m.strat.PointerDown(id) }
func (m *Menu) PointerUp(id string)     { m.strat.PointerUp(id) }
func (m *Menu) PointerCancel(id string) { m.strat.PointerCancel(id) }
func (m *Menu) PointerEnter(id string)  { m.strat.PointerEnter(id) }
func (m *Menu) PointerLeave(id string)  { m.strat.PointerLeave(id) }
func (m *Menu) Click(id string)         { m.strat.Click(id) }

// TouchMove and TouchEnd carry raw touch positions in screen space.
func (m *Menu) TouchMove(p geometry.Point) { m.strat.TouchMove(p) }
func (m *Menu) TouchEnd(p geometry.Point)  { m.strat.TouchEnd(p) }
