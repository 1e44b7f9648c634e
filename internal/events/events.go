/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package events provides the window-level input bus shared by the connector
// and the radial menu. A host (Fyne canvas, playback runner, tests) converts
// its native input into Event values and dispatches them; components attach
// listeners with On and detach them through the returned Handle.
//
// The bus is driven from a single UI loop and is not safe for concurrent use.
package events

import (
	"fmt"

	"wibeboard/internal/geometry"
)

// Kind identifies the input event type.
type Kind int

const (
	KeyDown Kind = iota
	ContextMenu
	PointerDown
	PointerMove
	PointerUp
	PointerCancel
	Click
	Drop
	DragOver
	numKinds
)

var kindNames = [...]string{
	KeyDown:       "keydown",
	ContextMenu:   "contextmenu",
	PointerDown:   "pointerdown",
	PointerMove:   "pointermove",
	PointerUp:     "pointerup",
	PointerCancel: "pointercancel",
	Click:         "click",
	Drop:          "drop",
	DragOver:      "dragover",
}

func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	for i, n := range kindNames {
		if n == s {
			return Kind(i), true
		}
	}
	return 0, false
}

// TargetKind classifies what the pointer was over when the event was raised.
// Hosts resolve it by hit testing before dispatch.
type TargetKind int

const (
	TargetCanvas TargetKind = iota
	TargetNode
	TargetHandle
	TargetPlaceholder
	TargetGhost
	TargetMenu
)

func (t TargetKind) String() string {
	switch t {
	case TargetCanvas:
		return "canvas"
	case TargetNode:
		return "node"
	case TargetHandle:
		return "handle"
	case TargetPlaceholder:
		return "placeholder"
	case TargetGhost:
		return "ghost"
	case TargetMenu:
		return "menu"
	}
	return "unknown"
}

// Target is the hit-tested element under the pointer.
type Target struct {
	Kind TargetKind
	ID   string
}

// PointerType distinguishes mouse from touch input.
type PointerType int

const (
	Mouse PointerType = iota
	Touch
	Pen
)

// Mouse buttons as reported in Event.Button.
const (
	ButtonPrimary   = 0
	ButtonSecondary = 2
)

// Event is a single input event in screen coordinates.
type Event struct {
	Kind    Kind
	Screen  geometry.Point
	Key     string
	Button  int
	Pointer PointerType
	Target  Target
	// Transfer carries drag-and-drop data keyed by MIME-like type.
	Transfer map[string]string

	prevented bool
}

// PreventDefault marks the event as consumed so the host skips its own
// default handling (e.g. the native context menu).
func (e *Event) PreventDefault() { e.prevented = true }

func (e *Event) Prevented() bool { return e.prevented }

// Listener receives dispatched events.
type Listener func(*Event)

type listener struct {
	id      uint64
	fn      Listener
	removed bool
}

// Bus is a registry of listeners keyed by event kind.
type Bus struct {
	byKind [numKinds][]*listener
	nextID uint64
}

func NewBus() *Bus { return &Bus{} }

// On registers fn for events of kind k.
func (b *Bus) On(k Kind, fn Listener) Handle {
	if k < 0 || k >= numKinds || fn == nil {
		return Handle{}
	}
	b.nextID++
	l := &listener{id: b.nextID, fn: fn}
	b.byKind[k] = append(b.byKind[k], l)
	return Handle{bus: b, kind: k, l: l}
}

// Dispatch delivers e to every listener registered for e.Kind, in
// registration order. Listeners added during dispatch do not see the current
// event; listeners removed during dispatch are skipped.
func (b *Bus) Dispatch(e *Event) {
	if e == nil || e.Kind < 0 || e.Kind >= numKinds {
		return
	}
	snapshot := append([]*listener(nil), b.byKind[e.Kind]...)
	for _, l := range snapshot {
		if l.removed {
			continue
		}
		l.fn(e)
	}
}

// Count returns the total number of attached listeners.
func (b *Bus) Count() int {
	n := 0
	for _, ls := range b.byKind {
		n += len(ls)
	}
	return n
}

// CountKind returns the number of listeners attached for kind k.
func (b *Bus) CountKind(k Kind) int {
	if k < 0 || k >= numKinds {
		return 0
	}
	return len(b.byKind[k])
}

func (b *Bus) remove(k Kind, l *listener) {
	s := b.byKind[k]
	for i := range s {
		if s[i] == l {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = nil
			b.byKind[k] = s[:len(s)-1]
			return
		}
	}
}

// Handle detaches a registered listener.
type Handle struct {
	bus  *Bus
	kind Kind
	l    *listener
}

// Remove unregisters the listener. Calling it more than once is a no-op.
func (h Handle) Remove() {
	if h.bus == nil || h.l == nil || h.l.removed {
		return
	}
	h.l.removed = true
	h.bus.remove(h.kind, h.l)
}

// Active reports whether the listener is still attached.
func (h Handle) Active() bool { return h.l != nil && !h.l.removed }

// Scope groups handles that share a lifetime, such as the listeners of one
// connector phase. Release detaches all of them at once.
type Scope struct {
	bus     *Bus
	handles []Handle
}

func (b *Bus) Scope() *Scope { return &Scope{bus: b} }

func (s *Scope) On(k Kind, fn Listener) Handle {
	h := s.bus.On(k, fn)
	s.handles = append(s.handles, h)
	return h
}

// Release removes every handle acquired through the scope. The scope can be
// reused afterwards.
func (s *Scope) Release() {
	for _, h := range s.handles {
		h.Remove()
	}
	s.handles = s.handles[:0]
}

// Len returns the number of handles currently held.
func (s *Scope) Len() int { return len(s.handles) }
