/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package connector

import (
	"wibeboard/internal/flow"
	"wibeboard/internal/geometry"
	"wibeboard/internal/placeholder"
)

// Fixed ids of the ghost preview.
const (
	GhostNodeID = "ghost-node"
	GhostEdgeID = "ghost-edge"
)

// RenderKind tells the canvas how to draw an item.
type RenderKind int

const (
	RenderHost RenderKind = iota
	RenderPlaceholder
	RenderGhost
)

func (k RenderKind) String() string {
	switch k {
	case RenderPlaceholder:
		return "placeholder"
	case RenderGhost:
		return "ghost"
	}
	return "host"
}

// RenderNode is one node of the merged render list, in logical coordinates.
type RenderNode struct {
	ID    string
	Kind  RenderKind
	Type  string
	Label string
	Rect  geometry.Rect
	// Placeholder fields; zero for host and ghost nodes.
	Placeholder placeholder.Kind
	GridCols    int
	GridRows    int
	Hovered     string
	Preset      string
}

// RenderEdge is one edge of the merged render list.
type RenderEdge struct {
	ID     string
	Kind   RenderKind
	Source string
	Target string
}

// Ghost returns the preview node and, when the gesture started from a node,
// the preview edge. ok is false outside Positioning. The ghost is derived
// from the cursor and never stored.
func (m *Machine) Ghost() (node RenderNode, edge *RenderEdge, ok bool) {
	p, isPos := m.phase.(Positioning)
	if !isPos {
		return RenderNode{}, nil, false
	}
	g := m.opts.Grid
	w := float32(g.DefaultCols) * g.Cell
	h := float32(g.DefaultRows) * g.Cell
	node = RenderNode{
		ID:       GhostNodeID,
		Kind:     RenderGhost,
		Rect:     geometry.R(p.CursorLogicalPos.X, p.CursorLogicalPos.Y-h/2, w, h),
		GridCols: g.DefaultCols,
		GridRows: g.DefaultRows,
	}
	if p.SourceNodeID != "" {
		edge = &RenderEdge{ID: GhostEdgeID, Kind: RenderGhost, Source: p.SourceNodeID, Target: GhostNodeID}
	}
	return node, edge, true
}

// RenderList merges host nodes and edges with placeholders and the ghost
// preview, in that order.
func (m *Machine) RenderList(hostNodes []flow.Node, hostEdges []flow.Edge) ([]RenderNode, []RenderEdge) {
	phs := m.store.Nodes()
	phEdges := m.store.Edges()
	nodes := make([]RenderNode, 0, len(hostNodes)+len(phs)+1)
	edges := make([]RenderEdge, 0, len(hostEdges)+len(phEdges)+1)

	for _, n := range hostNodes {
		nodes = append(nodes, RenderNode{ID: n.ID, Kind: RenderHost, Type: n.Type, Label: n.Label, Rect: n.Rect()})
	}
	for _, n := range phs {
		nodes = append(nodes, RenderNode{
			ID:          n.ID,
			Kind:        RenderPlaceholder,
			Rect:        n.Rect(),
			Placeholder: n.Kind(),
			GridCols:    n.GridCols,
			GridRows:    n.GridRows,
			Hovered:     n.HoveredWidgetType,
			Preset:      n.PresetToken(),
		})
	}
	for _, e := range hostEdges {
		edges = append(edges, RenderEdge{ID: e.ID, Kind: RenderHost, Source: e.Source, Target: e.Target})
	}
	for _, e := range phEdges {
		edges = append(edges, RenderEdge{ID: e.ID, Kind: RenderPlaceholder, Source: e.SourceNodeID, Target: e.TargetPlaceholderID})
	}
	if gn, ge, ok := m.Ghost(); ok {
		nodes = append(nodes, gn)
		if ge != nil {
			edges = append(edges, *ge)
		}
	}
	return nodes, edges
}
