/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package registry holds the widget types and templates a board can
// instantiate, plus the grid constants used to size new nodes.
package registry

import (
	"sort"
	"strings"
)

// Built-in grid defaults.
const (
	GridCell    float32 = 20
	MinGrid             = 2
	DefaultCols         = 4
	DefaultRows         = 2
)

// Grid describes the snapping grid.
type Grid struct {
	Cell        float32 `toml:"cell"`
	Min         int     `toml:"min"`
	DefaultCols int     `toml:"default_cols"`
	DefaultRows int     `toml:"default_rows"`
}

// DefaultGrid returns the built-in grid.
func DefaultGrid() Grid {
	return Grid{Cell: GridCell, Min: MinGrid, DefaultCols: DefaultCols, DefaultRows: DefaultRows}
}

func (g Grid) normalized() Grid {
	d := DefaultGrid()
	if g.Cell <= 0 {
		g.Cell = d.Cell
	}
	if g.Min <= 0 {
		g.Min = d.Min
	}
	if g.DefaultCols < g.Min {
		g.DefaultCols = max(d.DefaultCols, g.Min)
	}
	if g.DefaultRows < g.Min {
		g.DefaultRows = max(d.DefaultRows, g.Min)
	}
	return g
}

// Template is a preset for a widget type. It is forwarded untouched to the
// host when a node is created.
type Template struct {
	Name  string            `toml:"name" json:"name"`
	Label string            `toml:"label" json:"label,omitempty"`
	Theme string            `toml:"theme" json:"theme,omitempty"`
	Cols  int               `toml:"cols" json:"cols,omitempty"`
	Rows  int               `toml:"rows" json:"rows,omitempty"`
	Props map[string]string `toml:"props" json:"props,omitempty"`
}

// Widget is a node type offered by the picker.
type Widget struct {
	Type      string     `toml:"type"`
	Label     string     `toml:"label"`
	Icon      string     `toml:"icon"`
	Color     string     `toml:"color"`
	Aliases   []string   `toml:"aliases"`
	Templates []Template `toml:"templates"`
}

// Template returns the named template, or the first one if name is empty.
func (w Widget) Template(name string) (Template, bool) {
	if name == "" {
		if len(w.Templates) == 0 {
			return Template{}, false
		}
		return w.Templates[0], true
	}
	for _, t := range w.Templates {
		if t.Name == name {
			return t, true
		}
	}
	return Template{}, false
}

// Registry is an immutable catalogue of widgets.
type Registry struct {
	grid    Grid
	widgets []Widget
	byType  map[string]*Widget
}

// New creates a registry. Later widgets override earlier ones with the same type.
func New(grid Grid, widgets []Widget) *Registry {
	r := &Registry{grid: grid.normalized(), byType: make(map[string]*Widget)}
	r.widgets = dedup(widgets)
	for i := range r.widgets {
		w := &r.widgets[i]
		r.byType[w.Type] = w
		for _, a := range w.Aliases {
			if _, taken := r.byType[a]; !taken {
				r.byType[a] = w
			}
		}
	}
	return r
}

func dedup(widgets []Widget) []Widget {
	last := make(map[string]int, len(widgets))
	for i, w := range widgets {
		last[w.Type] = i
	}
	out := make([]Widget, 0, len(last))
	for i, w := range widgets {
		if last[w.Type] == i {
			out = append(out, w)
		}
	}
	return out
}

func (r *Registry) Grid() Grid { return r.grid }

// Default returns the default size of a new node in grid cells.
func (r *Registry) Default() (cols, rows int) { return r.grid.DefaultCols, r.grid.DefaultRows }

func (r *Registry) All() []Widget { return r.widgets }

// Get returns a widget by type or alias, or nil.
func (r *Registry) Get(typ string) *Widget { return r.byType[typ] }

// Types returns the sorted widget type names.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.widgets))
	for _, w := range r.widgets {
		out = append(out, w.Type)
	}
	sort.Strings(out)
	return out
}

// Resolve maps a menu token such as "script:py", "ai:worker" or "user" to a
// widget and template. A bare category resolves to the widget's first template.
func (r *Registry) Resolve(token string) (Widget, Template, bool) {
	cat, sub, _ := strings.Cut(token, ":")
	w := r.Get(cat)
	if w == nil {
		return Widget{}, Template{}, false
	}
	t, ok := w.Template(sub)
	if !ok {
		return Widget{}, Template{}, false
	}
	return *w, t, true
}
