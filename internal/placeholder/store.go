/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package placeholder owns the transient nodes and edges that represent a
// node under construction. The connector creates, resizes and removes them;
// the canvas only reads them when building its render list.
//
// The picker shown on a placeholder talks back through typed events
// (ResizeRequested, WidgetSelected, CancelRequested, HoverChanged) published
// on the store instead of callbacks stored inside node data.
package placeholder

import (
	"fmt"
	"log/slog"

	"wibeboard/internal/geometry"
	wblog "wibeboard/internal/log"
	"wibeboard/internal/registry"
)

// IDPrefix prefixes every placeholder id.
const IDPrefix = "ph-"

// Kind tags what the canvas should draw for a placeholder.
type Kind int

const (
	// KindSizing is a placeholder still following the pointer.
	KindSizing Kind = iota
	// KindPicker is a frozen placeholder showing the widget picker.
	KindPicker
)

func (k Kind) String() string {
	if k == KindPicker {
		return "picker"
	}
	return "sizing"
}

// Node is a placeholder node in logical coordinates.
type Node struct {
	ID                string
	Position          geometry.Point
	Width, Height     float32
	GridCols          int
	GridRows          int
	IsSizing          bool
	IsResizable       bool
	HoveredWidgetType string
	// PresetType and PresetTemplate are the widget a drop carried along; the
	// picker offers them as the default choice.
	PresetType     string
	PresetTemplate registry.Template
}

// PresetToken returns the preset as a "type:template" token, or "".
func (n Node) PresetToken() string {
	if n.PresetType == "" {
		return ""
	}
	if n.PresetTemplate.Name == "" {
		return n.PresetType
	}
	return n.PresetType + ":" + n.PresetTemplate.Name
}

func (n Node) Kind() Kind {
	if n.IsSizing {
		return KindSizing
	}
	return KindPicker
}

// Rect returns the node's bounds.
func (n Node) Rect() geometry.Rect {
	return geometry.R(n.Position.X, n.Position.Y, n.Width, n.Height)
}

// Edge connects a source host node to a placeholder.
type Edge struct {
	ID                  string
	SourceNodeID        string
	TargetPlaceholderID string
}

// Store is the single source of truth for placeholders. It is driven from
// the UI loop and is not safe for concurrent use.
type Store struct {
	grid   registry.Grid
	seq    uint64
	nodes  []*Node
	edges  []Edge
	subs   []*subscriber
	nextSb uint64
	log    *slog.Logger
}

type subscriber struct {
	id uint64
	fn func(Event)
}

// NewStore creates an empty store sized against grid.
func NewStore(grid registry.Grid) *Store {
	if grid.Cell <= 0 {
		grid = registry.DefaultGrid()
	}
	return &Store{grid: grid, log: wblog.WithComponent("placeholder")}
}

// Grid returns the grid the store sizes placeholders on.
func (s *Store) Grid() registry.Grid { return s.grid }

// Create inserts a placeholder of the default grid size and, when
// sourceNodeID is set, an edge from that node. pos is the middle of the
// placeholder's left edge, the same anchor the ghost and pointer sizing use.
// Ids come from a monotonic counter and are never reused.
func (s *Store) Create(sourceNodeID string, pos geometry.Point) string {
	s.seq++
	id := fmt.Sprintf("%s%d", IDPrefix, s.seq)
	g := geometry.GridRectAt(pos, s.grid.DefaultCols, s.grid.DefaultRows, s.grid.Cell)
	g.Y -= g.Height / 2
	s.nodes = append(s.nodes, &Node{
		ID:          id,
		Position:    geometry.Pt(g.X, g.Y),
		Width:       g.Width,
		Height:      g.Height,
		GridCols:    g.Cols,
		GridRows:    g.Rows,
		IsSizing:    true,
		IsResizable: false,
	})
	if sourceNodeID != "" {
		s.edges = append(s.edges, Edge{
			ID:                  "edge-" + sourceNodeID + "-" + id,
			SourceNodeID:        sourceNodeID,
			TargetPlaceholderID: id,
		})
	}
	s.log.Debug("placeholder created", slog.String("id", id), slog.String("source", sourceNodeID))
	return id
}

func (s *Store) find(id string) *Node {
	for _, n := range s.nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// Resize updates position, size and grid metadata. Unknown ids are ignored.
func (s *Store) Resize(id string, r geometry.GridRect) {
	n := s.find(id)
	if n == nil {
		return
	}
	n.Position = geometry.Pt(r.X, r.Y)
	n.Width, n.Height = r.Width, r.Height
	n.GridCols, n.GridRows = r.Cols, r.Rows
}

// MarkSizingDone freezes the pointer-driven sizing and reveals the picker.
// The picker may still request explicit resizes. Unknown ids are ignored.
func (s *Store) MarkSizingDone(id string) {
	n := s.find(id)
	if n == nil {
		return
	}
	n.IsSizing = false
	n.IsResizable = true
}

// SetHovered records the widget type under the picker's pointer; empty clears it.
func (s *Store) SetHovered(id, widgetType string) {
	if n := s.find(id); n != nil {
		n.HoveredWidgetType = widgetType
	}
}

// SetPreset records the widget a drop carried into the placeholder.
func (s *Store) SetPreset(id, widgetType string, tmpl registry.Template) {
	if n := s.find(id); n != nil {
		n.PresetType, n.PresetTemplate = widgetType, tmpl
	}
}

// Remove deletes the placeholder and every edge targeting it. Idempotent.
func (s *Store) Remove(id string) {
	for i, n := range s.nodes {
		if n.ID == id {
			copy(s.nodes[i:], s.nodes[i+1:])
			s.nodes[len(s.nodes)-1] = nil
			s.nodes = s.nodes[:len(s.nodes)-1]
			s.log.Debug("placeholder removed", slog.String("id", id))
			break
		}
	}
	kept := s.edges[:0]
	for _, e := range s.edges {
		if e.TargetPlaceholderID != id {
			kept = append(kept, e)
		}
	}
	s.edges = kept
}

// Get returns a copy of the placeholder.
func (s *Store) Get(id string) (Node, bool) {
	if n := s.find(id); n != nil {
		return *n, true
	}
	return Node{}, false
}

func (s *Store) Has(id string) bool { return s.find(id) != nil }

// Nodes returns copies of all placeholders in creation order.
func (s *Store) Nodes() []Node {
	out := make([]Node, len(s.nodes))
	for i, n := range s.nodes {
		out[i] = *n
	}
	return out
}

// Edges returns copies of all placeholder edges.
func (s *Store) Edges() []Edge { return append([]Edge(nil), s.edges...) }

func (s *Store) Len() int { return len(s.nodes) }
