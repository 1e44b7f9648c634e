/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package connector

import "wibeboard/internal/geometry"

// PhaseType tags the active phase.
type PhaseType int

const (
	PhaseIdle PhaseType = iota
	PhasePositioning
	PhaseSizing
	PhasePlaced
)

func (t PhaseType) String() string {
	switch t {
	case PhaseIdle:
		return "idle"
	case PhasePositioning:
		return "positioning"
	case PhaseSizing:
		return "sizing"
	case PhasePlaced:
		return "placed"
	}
	return "invalid"
}

// Phase is the machine's only mutable status. Exactly one of Idle,
// Positioning, Sizing or Placed is active at a time.
type Phase interface {
	Type() PhaseType
	phase()
}

// Idle waits for a handle drag or a drop.
type Idle struct{}

// Positioning follows the pointer from a source handle (or empty space)
// toward the point where the new node will be anchored.
type Positioning struct {
	SourceNodeID     string
	SourceLogicalPos geometry.Point
	CursorLogicalPos geometry.Point
}

// Sizing resizes a placeholder from a fixed anchor as the pointer moves.
type Sizing struct {
	PlaceholderID    string
	SourceNodeID     string
	AnchorLogicalPos geometry.Point
}

// Placed has a frozen placeholder showing the widget picker.
type Placed struct {
	PlaceholderID    string
	SourceNodeID     string
	AnchorLogicalPos geometry.Point
	GridCols         int
	GridRows         int
}

func (Idle) Type() PhaseType        { return PhaseIdle }
func (Positioning) Type() PhaseType { return PhasePositioning }
func (Sizing) Type() PhaseType      { return PhaseSizing }
func (Placed) Type() PhaseType      { return PhasePlaced }

func (Idle) phase()        {}
func (Positioning) phase() {}
func (Sizing) phase()      {}
func (Placed) phase()      {}

// placeholderOf returns the placeholder owned by p, if any.
func placeholderOf(p Phase) string {
	switch v := p.(type) {
	case Sizing:
		return v.PlaceholderID
	case Placed:
		return v.PlaceholderID
	}
	return ""
}
