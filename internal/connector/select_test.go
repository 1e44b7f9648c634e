/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package connector

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wibeboard/internal/events"
	"wibeboard/internal/flow"
	"wibeboard/internal/geometry"
	"wibeboard/internal/registry"
)

func TestNodeClickTogglesMenu(t *testing.T) {
	r := newRig(t, Options{})
	r.send(events.Click, 10, 10, node("a"))
	assert.Equal(t, "a", r.m.MenuNode())
	r.send(events.Click, 10, 10, node("b"))
	assert.Equal(t, "b", r.m.MenuNode())
	r.send(events.Click, 10, 10, node("b"))
	assert.Equal(t, "", r.m.MenuNode())

	r.send(events.Click, 10, 10, node("a"))
	r.send(events.Click, 500, 500, canvas)
	assert.Equal(t, "", r.m.MenuNode())
	assert.Equal(t, []menuCall{{"a", true}, {"b", true}, {"b", false}, {"a", true}, {"a", false}}, r.host.menu)
}

func TestLongPressTogglesMenuAndSuppressesClick(t *testing.T) {
	r := newRig(t, Options{})
	r.send(events.PointerDown, 10, 10, node("a"))
	r.clock.Advance(499 * time.Millisecond)
	assert.Equal(t, "", r.m.MenuNode())
	r.clock.Advance(time.Millisecond)
	assert.Equal(t, "a", r.m.MenuNode())

	r.send(events.PointerUp, 10, 10, node("a"))
	r.send(events.Click, 10, 10, node("a"))
	assert.Equal(t, "a", r.m.MenuNode(), "click after a long-press must not toggle again")

	r.send(events.PointerDown, 10, 10, node("a"))
	r.send(events.PointerUp, 10, 10, node("a"))
	r.send(events.Click, 10, 10, node("a"))
	assert.Equal(t, "", r.m.MenuNode())
	assert.Equal(t, 0, r.clock.Pending())
}

func TestLongPressCancelledBeforeFiring(t *testing.T) {
	cases := map[string]func(r *rig){
		"pointerup":     func(r *rig) { r.send(events.PointerUp, 10, 10, node("a")) },
		"pointercancel": func(r *rig) { r.send(events.PointerCancel, 10, 10, node("a")) },
		"move":          func(r *rig) { r.send(events.PointerMove, 40, 10, canvas) },
	}
	for name, end := range cases {
		t.Run(name, func(t *testing.T) {
			r := newRig(t, Options{})
			r.send(events.PointerDown, 10, 10, node("a"))
			r.clock.Advance(200 * time.Millisecond)
			end(r)
			assert.Equal(t, 0, r.clock.Pending())
			r.clock.Advance(time.Second)
			assert.Equal(t, "", r.m.MenuNode())
		})
	}
}

func TestSmallMoveKeepsLongPress(t *testing.T) {
	r := newRig(t, Options{})
	r.send(events.PointerDown, 10, 10, node("a"))
	r.send(events.PointerMove, 13, 12, node("a"))
	r.clock.Advance(600 * time.Millisecond)
	assert.Equal(t, "a", r.m.MenuNode())
}

func TestRepeatedPressesKeepSingleTimer(t *testing.T) {
	r := newRig(t, Options{})
	for i := 0; i < 5; i++ {
		r.send(events.PointerDown, 10, 10, node("a"))
		assert.Equal(t, 1, r.clock.Pending())
	}
	r.clock.Advance(time.Second)
	assert.Equal(t, []menuCall{{"a", true}}, r.host.menu)
}

func TestSelectionSuppressedOutsideIdle(t *testing.T) {
	r := newRig(t, Options{})
	r.send(events.PointerDown, 0, 0, handle("a"))
	r.send(events.PointerDown, 10, 10, node("b"))
	assert.Equal(t, 0, r.clock.Pending())
	r.send(events.Click, 10, 10, node("b"))
	assert.Equal(t, "", r.m.MenuNode())

	r.send(events.Click, 400, 300, canvas)
	id := placeholderOf(r.m.Phase())
	r.key("Escape")
	r.send(events.Click, 10, 10, phTarget(id))
	assert.Empty(t, r.host.menu)
}

func TestEnteringPositioningHidesMenu(t *testing.T) {
	r := newRig(t, Options{})
	r.send(events.Click, 10, 10, node("a"))
	r.send(events.PointerDown, 0, 0, handle("b"))
	assert.Equal(t, "", r.m.MenuNode())
	assert.Equal(t, []menuCall{{"a", true}, {"a", false}}, r.host.menu)
}

func TestLongPressTimerDoesNotFireAfterGestureStarts(t *testing.T) {
	r := newRig(t, Options{})
	r.send(events.PointerDown, 10, 10, node("a"))
	r.m.Begin("", geometry.Pt(0, 0))
	r.clock.Advance(time.Second)
	assert.Equal(t, "", r.m.MenuNode())
	assert.Equal(t, 0, r.clock.Pending())
}

func dropEvent(x, y float32, data string) *events.Event {
	return &events.Event{Kind: events.Drop, Screen: geometry.Pt(x, y), Transfer: map[string]string{PayloadKey: data}}
}

func TestDropEntersSizingWithoutSource(t *testing.T) {
	r := newRig(t, Options{EditMode: true})
	data, err := EncodePayload(Payload{Type: "script", Template: registry.Template{Name: "py"}})
	require.NoError(t, err)

	over := &events.Event{Kind: events.DragOver, Transfer: map[string]string{PayloadKey: data}}
	r.bus.Dispatch(over)
	assert.True(t, over.Prevented())

	e := dropEvent(300, 200, data)
	r.bus.Dispatch(e)
	assert.True(t, e.Prevented())
	sz, ok := r.m.Phase().(Sizing)
	require.True(t, ok)
	assert.Equal(t, "", sz.SourceNodeID)
	assert.Equal(t, geometry.Pt(300, 200), sz.AnchorLogicalPos)
	assert.Empty(t, r.store.Edges())
	n, _ := r.store.Get(sz.PlaceholderID)
	assert.Equal(t, "script", n.HoveredWidgetType)
	assert.Equal(t, "script", n.PresetType)
	assert.Equal(t, registry.Template{Name: "py"}, n.PresetTemplate, "the dropped template is kept")
	assert.Equal(t, "script:py", n.PresetToken())
	assert.Equal(t, r.bus.Count()-4, len(r.m.base))
}

func TestDropRejected(t *testing.T) {
	t.Run("malformed", func(t *testing.T) {
		r := newRig(t, Options{EditMode: true})
		for _, data := range []string{"{not json", `{"type":""}`, `{"type":"note"}`, `[1,2]`, `{"type":5,"template":{}}`} {
			r.bus.Dispatch(dropEvent(10, 10, data))
			assert.Equal(t, PhaseIdle, r.m.Phase().Type(), data)
		}
		assert.Equal(t, 0, r.store.Len())
	})
	t.Run("edit mode off", func(t *testing.T) {
		r := newRig(t, Options{})
		r.bus.Dispatch(dropEvent(10, 10, `{"type":"note","template":{"name":"plain"}}`))
		assert.Equal(t, PhaseIdle, r.m.Phase().Type())
		r.m.SetEditMode(true)
		r.bus.Dispatch(dropEvent(10, 10, `{"type":"note","template":{"name":"plain"}}`))
		assert.Equal(t, PhaseSizing, r.m.Phase().Type())
	})
	t.Run("busy", func(t *testing.T) {
		r := newRig(t, Options{EditMode: true})
		r.send(events.PointerDown, 0, 0, handle("a"))
		r.bus.Dispatch(dropEvent(10, 10, `{"type":"note","template":{}}`))
		assert.Equal(t, PhasePositioning, r.m.Phase().Type())
	})
	t.Run("foreign transfer", func(t *testing.T) {
		r := newRig(t, Options{EditMode: true})
		e := &events.Event{Kind: events.Drop, Transfer: map[string]string{"text/plain": "hi"}}
		r.bus.Dispatch(e)
		assert.False(t, e.Prevented())
		assert.Equal(t, PhaseIdle, r.m.Phase().Type())
	})
}

func TestParsePayload(t *testing.T) {
	p, err := ParsePayload(`{"type":"agent","template":{"name":"worker","props":{"role":"worker"}}}`)
	require.NoError(t, err)
	assert.Equal(t, "agent", p.Type)
	assert.Equal(t, "worker", p.Template.Props["role"])

	_, err = ParsePayload(`{"type":"agent","template":{"props":{"n":1}}}`)
	assert.True(t, errors.Is(err, ErrMalformedPayload))
	_, err = ParsePayload(``)
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestGhostFollowsCursorDuringPositioning(t *testing.T) {
	r := newRig(t, Options{})
	_, _, ok := r.m.Ghost()
	assert.False(t, ok)

	r.send(events.PointerDown, 200, 150, handle("a"))
	r.send(events.PointerMove, 300, 200, canvas)
	n, e, ok := r.m.Ghost()
	require.True(t, ok)
	assert.Equal(t, GhostNodeID, n.ID)
	assert.Equal(t, geometry.R(300, 180, 80, 40), n.Rect)
	require.NotNil(t, e)
	assert.Equal(t, RenderEdge{ID: GhostEdgeID, Kind: RenderGhost, Source: "a", Target: GhostNodeID}, *e)

	r.send(events.PointerMove, 320, 220, canvas)
	n, _, _ = r.m.Ghost()
	assert.Equal(t, geometry.Pt(320, 200), n.Rect.Min())

	r.send(events.Click, 320, 220, canvas)
	_, _, ok = r.m.Ghost()
	assert.False(t, ok)
	sz, ok := r.m.Phase().(Sizing)
	require.True(t, ok)
	ph, ok := r.store.Get(sz.PlaceholderID)
	require.True(t, ok)
	assert.Equal(t, n.Rect, ph.Rect(), "the placeholder takes over the ghost's rectangle")
}

func TestGhostWithoutSourceHasNoEdge(t *testing.T) {
	r := newRig(t, Options{})
	r.m.Begin("", geometry.Pt(10, 10))
	_, e, ok := r.m.Ghost()
	require.True(t, ok)
	assert.Nil(t, e)
}

func TestRenderListMergesHostPlaceholdersAndGhost(t *testing.T) {
	r := newRig(t, Options{})
	hostNodes := []flow.Node{{ID: "a", Type: "agent", Label: "A", Width: 80, Height: 40}}
	hostEdges := []flow.Edge{{ID: "e1", Source: "a", Target: "b"}}

	nodes, edges := r.m.RenderList(hostNodes, hostEdges)
	require.Len(t, nodes, 1)
	require.Len(t, edges, 1)

	r.send(events.PointerDown, 0, 0, handle("a"))
	nodes, edges = r.m.RenderList(hostNodes, hostEdges)
	require.Len(t, nodes, 2)
	assert.Equal(t, RenderGhost, nodes[1].Kind)
	require.Len(t, edges, 2)
	assert.Equal(t, GhostEdgeID, edges[1].ID)

	r.send(events.Click, 400, 300, canvas)
	nodes, edges = r.m.RenderList(hostNodes, hostEdges)
	require.Len(t, nodes, 2)
	assert.Equal(t, RenderPlaceholder, nodes[1].Kind)
	assert.Equal(t, placeholderOf(r.m.Phase()), nodes[1].ID)
	require.Len(t, edges, 2)
	assert.Equal(t, RenderPlaceholder, edges[1].Kind)
	assert.Equal(t, "a", edges[1].Source)

	r.key("Escape")
	nodes, edges = r.m.RenderList(hostNodes, hostEdges)
	assert.Len(t, nodes, 1)
	assert.Len(t, edges, 1)
}

func TestCloseDropsLivePlaceholderAndTimers(t *testing.T) {
	r := newRig(t, Options{})
	r.send(events.PointerDown, 10, 10, node("x"))
	r.m.Close()
	assert.Equal(t, 0, r.clock.Pending())

	r2 := newRig(t, Options{})
	r2.send(events.PointerDown, 0, 0, handle("a"))
	r2.send(events.Click, 100, 100, canvas)
	r2.m.Close()
	assert.Equal(t, 0, r2.store.Len())
	assert.Equal(t, 0, r2.bus.Count())
	assert.Equal(t, PhaseIdle, r2.m.Phase().Type())
	assert.False(t, r2.m.Begin("a", geometry.Pt(0, 0)))
}
