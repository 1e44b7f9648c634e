/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package radial

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"wibeboard/internal/geometry"
)

// Direction is a cardinal direction around the target node.
type Direction int

const (
	Top Direction = iota
	Right
	Bottom
	Left
)

// AllDirections in clockwise order.
var AllDirections = []Direction{Top, Right, Bottom, Left}

func (d Direction) String() string {
	switch d {
	case Top:
		return "top"
	case Right:
		return "right"
	case Bottom:
		return "bottom"
	case Left:
		return "left"
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// Vector is the unit vector pointing away from the node.
func (d Direction) Vector() geometry.Point {
	switch d {
	case Top:
		return geometry.Pt(0, -1)
	case Right:
		return geometry.Pt(1, 0)
	case Bottom:
		return geometry.Pt(0, 1)
	case Left:
		return geometry.Pt(-1, 0)
	}
	return geometry.Point{}
}

func ParseDirection(s string) (Direction, error) {
	for _, d := range AllDirections {
		if strings.EqualFold(strings.TrimSpace(s), d.String()) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

func (d *Direction) UnmarshalYAML(n *yaml.Node) error {
	v, err := ParseDirection(n.Value)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Role selects the host callback a primary's leaves invoke.
type Role int

const (
	RoleConfigure Role = iota
	RoleAddAfter
	RoleAddBefore
	RoleRename
)

var roleNames = map[string]Role{
	"configure": RoleConfigure,
	"after":     RoleAddAfter,
	"before":    RoleAddBefore,
	"rename":    RoleRename,
}

func (r Role) String() string {
	for k, v := range roleNames {
		if v == r {
			return k
		}
	}
	return "unknown"
}

func (r *Role) UnmarshalYAML(n *yaml.Node) error {
	v, ok := roleNames[strings.ToLower(strings.TrimSpace(n.Value))]
	if !ok {
		return fmt.Errorf("unknown role %q", n.Value)
	}
	*r = v
	return nil
}

// Item is a menu button descriptor. Action is the token handed to the host;
// items with children are branches and may also carry a default action.
type Item struct {
	Key      string `yaml:"key"`
	Label    string `yaml:"label"`
	Icon     string `yaml:"icon"`
	Color    string `yaml:"color"`
	Action   string `yaml:"action"`
	Children []Item `yaml:"children"`
}

func (it Item) IsBranch() bool { return len(it.Children) > 0 }

func (it Item) child(key string) (Item, int, bool) {
	for i, c := range it.Children {
		if c.Key == key {
			return c, i, true
		}
	}
	return Item{}, -1, false
}

// Primary is a top-level button placed in one direction.
type Primary struct {
	Direction Direction `yaml:"direction"`
	Role      Role      `yaml:"role"`
	Item      `yaml:",inline"`
}

// Topology is the full menu tree.
type Topology struct {
	Primaries []Primary `yaml:"primaries"`
}

// PathSep separates keys in button ids ("after/job/ai").
const PathSep = "/"

// Lookup resolves a button id to its primary and item.
func (t Topology) Lookup(id string) (Primary, Item, bool) {
	keys := strings.Split(id, PathSep)
	for _, p := range t.Primaries {
		if p.Key != keys[0] {
			continue
		}
		it := p.Item
		for _, k := range keys[1:] {
			c, _, ok := it.child(k)
			if !ok {
				return Primary{}, Item{}, false
			}
			it = c
		}
		return p, it, true
	}
	return Primary{}, Item{}, false
}

// Validate checks that keys are unique per level and directions are not reused.
func (t Topology) Validate() error {
	if len(t.Primaries) == 0 {
		return errors.New("topology has no primaries")
	}
	seenDir := map[Direction]bool{}
	seenKey := map[string]bool{}
	for _, p := range t.Primaries {
		if seenDir[p.Direction] {
			return fmt.Errorf("direction %s used twice", p.Direction)
		}
		seenDir[p.Direction] = true
		if p.Key == "" || seenKey[p.Key] {
			return fmt.Errorf("primary key %q empty or duplicated", p.Key)
		}
		seenKey[p.Key] = true
		if err := validateItems(p.Key, p.Children); err != nil {
			return err
		}
	}
	return nil
}

func validateItems(prefix string, items []Item) error {
	seen := map[string]bool{}
	for _, it := range items {
		if it.Key == "" || strings.Contains(it.Key, PathSep) || seen[it.Key] {
			return fmt.Errorf("%s: bad or duplicate key %q", prefix, it.Key)
		}
		seen[it.Key] = true
		if !it.IsBranch() && it.Action == "" {
			return fmt.Errorf("%s/%s: leaf without action", prefix, it.Key)
		}
		if err := validateItems(prefix+PathSep+it.Key, it.Children); err != nil {
			return err
		}
	}
	return nil
}

// LoadTopology reads a YAML topology file.
func LoadTopology(path string) (Topology, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Topology{}, fmt.Errorf("read topology: %w", err)
	}
	var t Topology
	if err := yaml.Unmarshal(b, &t); err != nil {
		return Topology{}, fmt.Errorf("parse topology: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Topology{}, fmt.Errorf("invalid topology %s: %w", path, err)
	}
	return t, nil
}

func insertTree() []Item {
	return []Item{
		{Key: "user", Label: "User", Icon: "person", Color: "#0ea5e9", Action: "user"},
		{Key: "job", Label: "Job", Icon: "briefcase", Color: "#f97316", Children: []Item{
			{Key: "script", Label: "Script", Icon: "terminal", Color: "#16a34a", Action: "script:js", Children: []Item{
				{Key: "js", Label: "JS", Action: "script:js"},
				{Key: "sh", Label: "SH", Action: "script:sh"},
				{Key: "py", Label: "PY", Action: "script:py"},
			}},
			{Key: "ai", Label: "AI", Icon: "robot", Color: "#7c3aed", Action: "ai:worker", Children: []Item{
				{Key: "planner", Label: "Planner", Action: "ai:planner"},
				{Key: "worker", Label: "Worker", Action: "ai:worker"},
				{Key: "reviewer", Label: "Reviewer", Action: "ai:reviewer"},
			}},
		}},
		{Key: "recent", Label: "Recent", Icon: "history", Color: "#64748b", Action: "recent"},
	}
}

// DefaultTopology is the built-in menu: configure on top, add-after on the
// right, add-before on the left and rename below the node.
func DefaultTopology() Topology {
	return Topology{Primaries: []Primary{
		{Direction: Top, Role: RoleConfigure, Item: Item{Key: "config", Label: "Configure", Icon: "gear", Color: "#475569", Children: []Item{
			{Key: "attach", Label: "Attach", Icon: "paperclip", Children: []Item{
				{Key: "expectation", Label: "Expectation", Action: "attach:expectation"},
				{Key: "note", Label: "Note", Action: "attach:note"},
			}},
			{Key: "settings", Label: "Settings", Icon: "sliders", Action: "settings"},
			{Key: "delete", Label: "Delete", Icon: "trash", Color: "#dc2626", Action: "delete"},
		}}},
		{Direction: Right, Role: RoleAddAfter, Item: Item{Key: "after", Label: "After", Icon: "arrow-right", Color: "#2563eb", Children: insertTree()}},
		{Direction: Bottom, Role: RoleRename, Item: Item{Key: "rename", Label: "Rename", Icon: "pencil", Color: "#0f766e"}},
		{Direction: Left, Role: RoleAddBefore, Item: Item{Key: "before", Label: "Before", Icon: "arrow-left", Color: "#2563eb", Children: insertTree()}},
	}}
}
