/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package flow is the board's host graph: the real nodes and edges, the
// pan/zoom viewport and the node locator used by the radial menu. Interaction
// components never mutate it directly; they report through callbacks and the
// board applies the result here.
package flow

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"wibeboard/internal/events"
	"wibeboard/internal/geometry"
	wblog "wibeboard/internal/log"
	"wibeboard/internal/registry"
)

var (
	ErrNodeNotFound  = errors.New("node not found")
	ErrDuplicateNode = errors.New("duplicate node id")
	ErrUnknownToken  = errors.New("unknown widget token")
	ErrUnknownAction = errors.New("unknown configure action")
)

// HandleRadius is the logical hit radius of a node's output handle.
const HandleRadius float32 = 8

// Node is a host node in logical coordinates.
type Node struct {
	ID          string
	Type        string
	Label       string
	Template    registry.Template
	Position    geometry.Point
	Width       float32
	Height      float32
	Annotations []string
}

func (n Node) Rect() geometry.Rect { return geometry.R(n.Position.X, n.Position.Y, n.Width, n.Height) }

// OutputHandle is the connection handle on the node's right edge.
func (n Node) OutputHandle() geometry.Point {
	return geometry.Pt(n.Position.X+n.Width, n.Position.Y+n.Height/2)
}

// Edge connects two host nodes.
type Edge struct {
	ID     string
	Source string
	Target string
}

// NewNodeID returns a fresh node id.
func NewNodeID() string { return "node-" + uuid.NewString() }

// Graph holds the host nodes and edges in paint order.
type Graph struct {
	// NewID generates ids for nodes added without one. Nil means NewNodeID.
	NewID func() string

	reg    *registry.Registry
	nodes  []*Node
	edges  []Edge
	recent string
	log    *slog.Logger
}

// NewGraph creates an empty graph resolving widget tokens through reg.
func NewGraph(reg *registry.Registry) *Graph {
	return &Graph{reg: reg, log: wblog.WithComponent("flow")}
}

func (g *Graph) find(id string) (int, *Node) {
	for i, n := range g.nodes {
		if n.ID == id {
			return i, n
		}
	}
	return -1, nil
}

// maxIDTries bounds how often NextID asks NewID before falling back to a uuid.
const maxIDTries = 64

// NextID returns a generated id that no node uses yet.
func (g *Graph) NextID() string {
	if g.NewID != nil {
		for try := 0; try < maxIDTries; try++ {
			if id := g.NewID(); id != "" && !g.Has(id) {
				return id
			}
		}
	}
	for {
		if id := NewNodeID(); !g.Has(id) {
			return id
		}
	}
}

// Has reports whether a node with id exists.
func (g *Graph) Has(id string) bool {
	_, n := g.find(id)
	return n != nil
}

// Add appends n and returns its id. An empty id gets a generated one; an id
// already in the graph is rejected.
func (g *Graph) Add(n Node) (string, error) {
	if n.ID == "" {
		n.ID = g.NextID()
	} else if g.Has(n.ID) {
		return "", fmt.Errorf("add %s: %w", n.ID, ErrDuplicateNode)
	}
	if n.Label == "" {
		n.Label = n.Type
	}
	g.nodes = append(g.nodes, &n)
	return n.ID, nil
}

// Connect adds an edge between two existing nodes.
func (g *Graph) Connect(source, target string) (string, error) {
	if _, s := g.find(source); s == nil {
		return "", fmt.Errorf("connect %s: %w", source, ErrNodeNotFound)
	}
	if _, t := g.find(target); t == nil {
		return "", fmt.Errorf("connect %s: %w", target, ErrNodeNotFound)
	}
	e := Edge{ID: "edge-" + source + "-" + target, Source: source, Target: target}
	g.edges = append(g.edges, e)
	return e.ID, nil
}

func (g *Graph) Node(id string) (Node, bool) {
	if _, n := g.find(id); n != nil {
		return *n, true
	}
	return Node{}, false
}

func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = *n
	}
	return out
}

func (g *Graph) Edges() []Edge { return append([]Edge(nil), g.edges...) }

// Remove deletes a node and every edge touching it.
func (g *Graph) Remove(id string) error {
	i, n := g.find(id)
	if n == nil {
		return fmt.Errorf("remove %s: %w", id, ErrNodeNotFound)
	}
	g.nodes = append(g.nodes[:i], g.nodes[i+1:]...)
	kept := g.edges[:0]
	for _, e := range g.edges {
		if e.Source != id && e.Target != id {
			kept = append(kept, e)
		}
	}
	g.edges = kept
	return nil
}

// Created instantiates a node reported by the connector and, if the gesture
// started from a node, wires the edge from it.
func (g *Graph) Created(id, widgetType string, tmpl registry.Template, rect geometry.Rect, sourceID string) error {
	label := tmpl.Label
	if label == "" {
		label = widgetType
	}
	if _, err := g.Add(Node{ID: id, Type: widgetType, Label: label, Template: tmpl, Position: rect.Min(), Width: rect.W, Height: rect.H}); err != nil {
		return err
	}
	g.recent = widgetType + ":" + tmpl.Name
	if sourceID != "" {
		if _, err := g.Connect(sourceID, id); err != nil {
			g.log.Warn("source node vanished before commit", slog.String("source", sourceID), slog.Any("err", err))
		}
	}
	return nil
}

// AddAfter inserts a node of the token's type right of the anchor and wires
// anchor -> new. The token "recent" repeats the last created type.
func (g *Graph) AddAfter(anchorID, token string) (string, error) {
	return g.insert(anchorID, token, true)
}

// AddBefore inserts a node left of the anchor and wires new -> anchor.
func (g *Graph) AddBefore(anchorID, token string) (string, error) {
	return g.insert(anchorID, token, false)
}

func (g *Graph) insert(anchorID, token string, after bool) (string, error) {
	_, anchor := g.find(anchorID)
	if anchor == nil {
		return "", fmt.Errorf("insert next to %s: %w", anchorID, ErrNodeNotFound)
	}
	if token == "recent" {
		if g.recent == "" {
			return "", fmt.Errorf("insert %q: no recent widget: %w", token, ErrUnknownToken)
		}
		token = g.recent
	}
	w, tmpl, ok := g.reg.Resolve(token)
	if !ok {
		return "", fmt.Errorf("insert %q: %w", token, ErrUnknownToken)
	}
	grid := g.reg.Grid()
	cols, rows := grid.DefaultCols, grid.DefaultRows
	if tmpl.Cols > 0 {
		cols = tmpl.Cols
	}
	if tmpl.Rows > 0 {
		rows = tmpl.Rows
	}
	width, height := float32(cols)*grid.Cell, float32(rows)*grid.Cell
	gap := 2 * grid.Cell
	cy := anchor.Position.Y + anchor.Height/2
	x := anchor.Position.X + anchor.Width + gap
	if !after {
		x = anchor.Position.X - gap - width
	}
	id, err := g.Add(Node{Type: w.Type, Label: tmpl.Label, Template: tmpl, Position: geometry.Pt(x, cy-height/2), Width: width, Height: height})
	if err != nil {
		return "", err
	}
	g.recent = w.Type + ":" + tmpl.Name
	if after {
		_, _ = g.Connect(anchorID, id)
	} else {
		_, _ = g.Connect(id, anchorID)
	}
	g.log.Debug("node inserted", slog.String("anchor", anchorID), slog.String("token", token), slog.Bool("after", after))
	return id, nil
}

// Rename sets a node label.
func (g *Graph) Rename(id, label string) error {
	_, n := g.find(id)
	if n == nil {
		return fmt.Errorf("rename %s: %w", id, ErrNodeNotFound)
	}
	n.Label = label
	return nil
}

// Configure applies a configure-menu action: "delete" removes the node,
// "settings" and "attach:<kind>" are recorded as annotations.
func (g *Graph) Configure(id, action string) error {
	_, n := g.find(id)
	if n == nil {
		return fmt.Errorf("configure %s: %w", id, ErrNodeNotFound)
	}
	switch {
	case action == "delete":
		return g.Remove(id)
	case action == "settings", strings.HasPrefix(action, "attach:"):
		n.Annotations = append(n.Annotations, action)
		return nil
	}
	return fmt.Errorf("configure %q: %w", action, ErrUnknownAction)
}

// HitTest finds the topmost node or output handle at logical point p.
// Handles are checked before node bodies.
func (g *Graph) HitTest(p geometry.Point) (events.Target, bool) {
	for i := len(g.nodes) - 1; i >= 0; i-- {
		n := g.nodes[i]
		if n.OutputHandle().Within(p, HandleRadius) {
			return events.Target{Kind: events.TargetHandle, ID: n.ID}, true
		}
	}
	for i := len(g.nodes) - 1; i >= 0; i-- {
		n := g.nodes[i]
		if n.Rect().Contains(p) {
			return events.Target{Kind: events.TargetNode, ID: n.ID}, true
		}
	}
	return events.Target{}, false
}

// NodeLocator resolves a node's current screen rectangle. ok is false when
// the node is not (or no longer) on screen.
type NodeLocator interface {
	Locate(nodeID string) (geometry.Rect, bool)
}

// ScreenLocator locates graph nodes through a viewport.
type ScreenLocator struct {
	Graph    *Graph
	Viewport *Viewport
}

func (l ScreenLocator) Locate(nodeID string) (geometry.Rect, bool) {
	n, ok := l.Graph.Node(nodeID)
	if !ok {
		return geometry.Rect{}, false
	}
	return l.Viewport.RectToScreen(n.Rect()), true
}
