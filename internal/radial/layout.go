/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package radial

import (
	"slices"
	"strings"
	"time"

	"wibeboard/internal/geometry"
)

// Config holds menu geometry and timing. Distances are in screen pixels.
type Config struct {
	Mode Mode
	// Directions lists the primaries to render; empty means all.
	Directions []Direction
	// AvoidOverlap pushes primaries out to ButtonSize/2 + Margin from the
	// node edge instead of Gap.
	AvoidOverlap bool
	Gap          float32
	ButtonSize   float32
	Margin       float32
	// Tile is the spacing unit of sub-level buttons.
	Tile         float32
	HoldDuration time.Duration
	PollInterval time.Duration
}

// DefaultConfig returns the built-in menu settings.
func DefaultConfig() Config {
	return Config{
		Mode:         ModeClick,
		Directions:   AllDirections,
		Gap:          12,
		ButtonSize:   40,
		Margin:       8,
		Tile:         48,
		HoldDuration: 500 * time.Millisecond,
		PollInterval: 50 * time.Millisecond,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if len(c.Directions) == 0 {
		c.Directions = d.Directions
	}
	if c.ButtonSize <= 0 {
		c.ButtonSize = d.ButtonSize
	}
	if c.Gap <= 0 {
		c.Gap = d.Gap
	}
	if c.Margin < 0 {
		c.Margin = d.Margin
	}
	if c.Tile <= 0 {
		c.Tile = d.Tile
	}
	if c.HoldDuration <= 0 {
		c.HoldDuration = d.HoldDuration
	}
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	return c
}

// gap is the distance between the node edge and a primary's center.
func (c Config) gap() float32 {
	if c.AvoidOverlap {
		return c.ButtonSize/2 + c.Margin
	}
	return c.Gap
}

// Button is a laid-out menu button.
type Button struct {
	ID          string
	Item        Item
	Direction   Direction
	Depth       int
	Center      geometry.Point
	Rect        geometry.Rect
	Expanded    bool
	Highlighted bool
	Progress    float32
}

// RenameView is the inline rename field.
type RenameView struct {
	Text   string
	Anchor geometry.Point
}

// View is everything a host needs to draw the menu. An invisible view draws
// nothing.
type View struct {
	Visible bool
	NodeID  string
	Target  geometry.Rect
	Buttons []Button
	Rename  *RenameView
}

// PrimaryAnchor returns the center of the primary button in direction d.
func PrimaryAnchor(target geometry.Rect, d Direction, cfg Config) geometry.Point {
	half := target.W / 2
	if d == Top || d == Bottom {
		half = target.H / 2
	}
	return target.Center().Add(d.Vector().Scale(half + cfg.gap()))
}

// Layout positions the primaries around target and fans out every expanded
// level along exp (a button id split into keys). Sub-levels step one Tile
// further away from the node per depth.
func Layout(t Topology, target geometry.Rect, exp []string, cfg Config) []Button {
	var out []Button
	half := cfg.ButtonSize / 2
	for _, p := range t.Primaries {
		if !slices.Contains(cfg.Directions, p.Direction) {
			continue
		}
		pos := PrimaryAnchor(target, p.Direction, cfg)
		open := len(exp) > 0 && exp[0] == p.Key
		out = append(out, Button{
			ID: p.Key, Item: p.Item, Direction: p.Direction,
			Center: pos, Rect: geometry.Square(pos, half), Expanded: open,
		})
		if !open {
			continue
		}
		step := p.Direction.Vector().Scale(cfg.Tile)
		items, prefix, parent := p.Children, p.Key, pos
		for depth := 1; len(items) > 0; depth++ {
			pts := geometry.ComputeFanPositions(parent, step, cfg.Tile, len(items))
			next := -1
			for i, it := range items {
				id := prefix + PathSep + it.Key
				isOpen := depth < len(exp) && exp[depth] == it.Key
				if isOpen && it.IsBranch() {
					next = i
				}
				out = append(out, Button{
					ID: id, Item: it, Direction: p.Direction, Depth: depth,
					Center: pts[i], Rect: geometry.Square(pts[i], half), Expanded: isOpen && it.IsBranch(),
				})
			}
			if next < 0 {
				break
			}
			parent = pts[next]
			prefix = prefix + PathSep + items[next].Key
			items = items[next].Children
		}
	}
	return out
}

func splitID(id string) []string {
	if id == "" {
		return nil
	}
	return strings.Split(id, PathSep)
}
