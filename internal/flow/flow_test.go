/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package flow

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wibeboard/internal/events"
	"wibeboard/internal/geometry"
	wblog "wibeboard/internal/log"
	"wibeboard/internal/registry"
)

func newGraph(t *testing.T) *Graph {
	t.Helper()
	wblog.Discard()
	reg, err := registry.Builtin()
	require.NoError(t, err)
	return NewGraph(reg)
}

func TestViewportRoundTrip(t *testing.T) {
	v := &Viewport{Pan: geometry.Pt(100, 50), Zoom: 2}
	s := v.LogicalToScreen(geometry.Pt(10, 10))
	assert.Equal(t, geometry.Pt(120, 70), s)
	assert.Equal(t, geometry.Pt(10, 10), v.ScreenToLogical(s))
}

func TestViewportZoomAtKeepsAnchorAndClamps(t *testing.T) {
	v := NewViewport()
	v.ZoomAt(geometry.Pt(200, 100), 2)
	assert.Equal(t, float32(2), v.Zoom)
	assert.Equal(t, geometry.Pt(200, 100), v.LogicalToScreen(geometry.Pt(200, 100)))

	v.ZoomAt(geometry.Pt(0, 0), 100)
	assert.Equal(t, MaxZoom, v.Zoom)
	v.ZoomAt(geometry.Pt(0, 0), 0.0001)
	assert.Equal(t, MinZoom, v.Zoom)
}

func TestCreatedWiresSourceEdge(t *testing.T) {
	g := newGraph(t)
	a := mustAdd(t, g, Node{ID: "a", Type: "agent", Position: geometry.Pt(0, 0), Width: 80, Height: 40})
	require.NoError(t, g.Created("n2", "script", registry.Template{Name: "py", Label: "Python"}, geometry.R(400, 260, 60, 80), a))

	n, ok := g.Node("n2")
	require.True(t, ok)
	assert.Equal(t, "Python", n.Label)
	assert.Equal(t, geometry.R(400, 260, 60, 80), n.Rect())
	require.Len(t, g.Edges(), 1)
	assert.Equal(t, Edge{ID: "edge-a-n2", Source: "a", Target: "n2"}, g.Edges()[0])
}

func mustAdd(t *testing.T, g *Graph, n Node) string {
	t.Helper()
	id, err := g.Add(n)
	require.NoError(t, err)
	return id
}

func TestAddRejectsDuplicateIDs(t *testing.T) {
	g := newGraph(t)
	mustAdd(t, g, Node{ID: "n1", Type: "agent", Width: 80, Height: 40})
	_, err := g.Add(Node{ID: "n1", Type: "note"})
	require.ErrorIs(t, err, ErrDuplicateNode)
	require.ErrorIs(t, g.Created("n1", "script", registry.Template{Name: "py"}, geometry.R(200, 0, 60, 40), "n1"), ErrDuplicateNode)
	assert.Len(t, g.Nodes(), 1)
	assert.Empty(t, g.Edges(), "no self loop")
}

func TestGeneratedIDsSkipTakenOnes(t *testing.T) {
	g := newGraph(t)
	seq := 0
	g.NewID = func() string { seq++; return fmt.Sprintf("n%d", seq) }
	mustAdd(t, g, Node{ID: "n1", Type: "agent", Width: 80, Height: 40})
	mustAdd(t, g, Node{ID: "n2", Type: "agent", Width: 80, Height: 40})

	id, err := g.AddAfter("n1", "script:py")
	require.NoError(t, err)
	assert.Equal(t, "n3", id, "menu inserts use the injected ids too")
	assert.Equal(t, "n4", g.NextID())

	g.NewID = func() string { return "n1" }
	assert.True(t, strings.HasPrefix(g.NextID(), "node-"), "a stuck generator falls back to uuids")
}

func TestAddAfterAndBeforePlaceAndWire(t *testing.T) {
	g := newGraph(t)
	mustAdd(t, g, Node{ID: "a", Type: "agent", Position: geometry.Pt(100, 100), Width: 80, Height: 40})

	after, err := g.AddAfter("a", "script:py")
	require.NoError(t, err)
	n, _ := g.Node(after)
	assert.True(t, strings.HasPrefix(after, "node-"))
	assert.Equal(t, "script", n.Type)
	assert.Equal(t, "py", n.Template.Name)
	assert.Equal(t, geometry.Pt(220, 100), n.Position)

	before, err := g.AddBefore("a", "ai:worker")
	require.NoError(t, err)
	b, _ := g.Node(before)
	assert.Equal(t, "agent", b.Type)
	assert.Equal(t, geometry.Pt(-20, 100), b.Position)

	edges := g.Edges()
	require.Len(t, edges, 2)
	assert.Equal(t, "a", edges[0].Source)
	assert.Equal(t, after, edges[0].Target)
	assert.Equal(t, before, edges[1].Source)
	assert.Equal(t, "a", edges[1].Target)
}

func TestAddAfterRecentRepeatsLastType(t *testing.T) {
	g := newGraph(t)
	mustAdd(t, g, Node{ID: "a", Type: "agent", Width: 80, Height: 40})
	_, err := g.AddAfter("a", "recent")
	require.ErrorIs(t, err, ErrUnknownToken)

	_, err = g.AddAfter("a", "script:sh")
	require.NoError(t, err)
	id, err := g.AddAfter("a", "recent")
	require.NoError(t, err)
	n, _ := g.Node(id)
	assert.Equal(t, "sh", n.Template.Name)
}

func TestInsertErrors(t *testing.T) {
	g := newGraph(t)
	_, err := g.AddAfter("missing", "user")
	assert.ErrorIs(t, err, ErrNodeNotFound)
	mustAdd(t, g, Node{ID: "a", Type: "agent"})
	_, err = g.AddBefore("a", "job")
	assert.ErrorIs(t, err, ErrUnknownToken)
}

func TestConfigureActions(t *testing.T) {
	g := newGraph(t)
	mustAdd(t, g, Node{ID: "a", Type: "agent"})
	mustAdd(t, g, Node{ID: "b", Type: "note"})
	_, err := g.Connect("a", "b")
	require.NoError(t, err)

	require.NoError(t, g.Configure("a", "settings"))
	require.NoError(t, g.Configure("a", "attach:note"))
	n, _ := g.Node("a")
	assert.Equal(t, []string{"settings", "attach:note"}, n.Annotations)

	assert.ErrorIs(t, g.Configure("a", "explode"), ErrUnknownAction)

	require.NoError(t, g.Configure("b", "delete"))
	_, ok := g.Node("b")
	assert.False(t, ok)
	assert.Empty(t, g.Edges())
}

func TestRename(t *testing.T) {
	g := newGraph(t)
	mustAdd(t, g, Node{ID: "a", Type: "agent"})
	require.NoError(t, g.Rename("a", "Planner"))
	n, _ := g.Node("a")
	assert.Equal(t, "Planner", n.Label)
	assert.ErrorIs(t, g.Rename("zz", "x"), ErrNodeNotFound)
}

func TestHitTestPrefersHandlesAndTopmost(t *testing.T) {
	g := newGraph(t)
	mustAdd(t, g, Node{ID: "a", Position: geometry.Pt(0, 0), Width: 100, Height: 40})
	mustAdd(t, g, Node{ID: "b", Position: geometry.Pt(50, 0), Width: 100, Height: 40})

	tgt, ok := g.HitTest(geometry.Pt(60, 20))
	require.True(t, ok)
	assert.Equal(t, events.Target{Kind: events.TargetNode, ID: "b"}, tgt)

	tgt, _ = g.HitTest(geometry.Pt(102, 21))
	assert.Equal(t, events.Target{Kind: events.TargetHandle, ID: "a"}, tgt)

	_, ok = g.HitTest(geometry.Pt(500, 500))
	assert.False(t, ok)
}

func TestScreenLocator(t *testing.T) {
	g := newGraph(t)
	mustAdd(t, g, Node{ID: "a", Position: geometry.Pt(10, 10), Width: 100, Height: 40})
	loc := ScreenLocator{Graph: g, Viewport: &Viewport{Pan: geometry.Pt(5, 5), Zoom: 2}}

	r, ok := loc.Locate("a")
	require.True(t, ok)
	assert.Equal(t, geometry.R(25, 25, 200, 80), r)
	_, ok = loc.Locate("gone")
	assert.False(t, ok)
}
