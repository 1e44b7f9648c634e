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
	"strings"

	"wibeboard/internal/geometry"
	"wibeboard/internal/sched"
)

// Mode is the gesture that reveals a branch.
type Mode int

const (
	ModeClick Mode = iota
	ModeHold
	ModeSwipe
)

// ErrUnknownActivation is returned by ParseMode.
var ErrUnknownActivation = errors.New("unknown activation mode")

func (m Mode) String() string {
	switch m {
	case ModeClick:
		return "click"
	case ModeHold:
		return "hold"
	case ModeSwipe:
		return "swipe"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "click":
		return ModeClick, nil
	case "hold":
		return ModeHold, nil
	case "swipe":
		return ModeSwipe, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownActivation, s)
}

// Strategy turns per-button input into menu operations. One strategy is
// chosen per menu from its Mode.
type Strategy interface {
	Mode() Mode
	PointerDown(id string)
	PointerUp(id string)
	PointerCancel(id string)
	PointerEnter(id string)
	PointerLeave(id string)
	Click(id string)
	// TouchMove and TouchEnd carry raw touch positions in screen space.
	TouchMove(p geometry.Point)
	TouchEnd(p geometry.Point)
	// Progress is the hold progress of a button in [0,1].
	Progress(id string) float32
	// Reset drops any in-flight gesture and its timers.
	Reset()
}

// target is the part of Menu the strategies drive.
type target interface {
	hover(id string)
	activate(id string)
	hold(id string)
	collapse(id string) bool
	isOuter(id string) bool
	isBranch(id string) bool
	buttonAt(p geometry.Point) string
	setHighlight(id string)
	clock() sched.Scheduler
}

func newStrategy(mode Mode, t target, cfg Config) Strategy {
	switch mode {
	case ModeHold:
		return &HoldStrategy{t: t, cfg: cfg}
	case ModeSwipe:
		return &SwipeStrategy{t: t}
	}
	return &ClickStrategy{t: t}
}

type baseStrategy struct{}

func (baseStrategy) PointerDown(string)       {}
func (baseStrategy) PointerUp(string)         {}
func (baseStrategy) PointerCancel(string)     {}
func (baseStrategy) PointerEnter(string)      {}
func (baseStrategy) PointerLeave(string)      {}
func (baseStrategy) Click(string)             {}
func (baseStrategy) TouchMove(geometry.Point) {}
func (baseStrategy) TouchEnd(geometry.Point)  {}
func (baseStrategy) Progress(string) float32  { return 0 }
func (baseStrategy) Reset()                   {}

// ClickStrategy expands branches on hover and commits on click. Clicking a
// branch that was already open, and not just opened by hovering it, closes it.
type ClickStrategy struct {
	baseStrategy
	t       target
	entered string
}

func (*ClickStrategy) Mode() Mode { return ModeClick }

func (s *ClickStrategy) PointerEnter(id string) {
	s.entered = id
	s.t.hover(id)
}

func (s *ClickStrategy) PointerLeave(id string) {
	if id == s.entered {
		s.entered = ""
	}
}

func (s *ClickStrategy) Click(id string) {
	justOpened := id == s.entered
	s.entered = ""
	if !justOpened && s.t.collapse(id) {
		return
	}
	s.t.activate(id)
}

func (s *ClickStrategy) Reset() { s.entered = "" }

// HoldStrategy acts on a button after it is held for Config.HoldDuration.
// A completed hold expands a branch immediately; leaves and rename are armed
// and fire on release over the same button. Releasing early, leaving or
// cancelling disarms. Clicks on outer buttons and branches do nothing;
// leaves still commit on click.
type HoldStrategy struct {
	baseStrategy
	t     target
	cfg   Config
	timer sched.Timer
	id    string
	start int64
	fired bool
	// swallow is the leaf just committed on release; the click that follows
	// the release is ignored.
	swallow string
}

func (*HoldStrategy) Mode() Mode { return ModeHold }

func (s *HoldStrategy) PointerDown(id string) {
	s.Reset()
	s.id = id
	s.start = s.t.clock().Now().UnixNano()
	s.timer = s.t.clock().AfterFunc(s.cfg.HoldDuration, func() {
		s.timer = nil
		s.fired = true
		s.t.hold(id)
	})
}

func (s *HoldStrategy) release(id string) {
	if id == s.id {
		s.Reset()
	}
}

// Armed reports the button whose hold completed and waits for release.
func (s *HoldStrategy) Armed() string {
	if s.fired && !s.t.isBranch(s.id) {
		return s.id
	}
	return ""
}

func (s *HoldStrategy) PointerUp(id string) {
	if id == "" || id != s.id {
		return
	}
	armed := s.Armed() == id
	s.Reset()
	if armed {
		s.t.activate(id)
		s.swallow = id
	}
}

func (s *HoldStrategy) PointerCancel(id string) { s.release(id) }
func (s *HoldStrategy) PointerLeave(id string)  { s.release(id) }

func (s *HoldStrategy) Click(id string) {
	if id != "" && id == s.swallow {
		s.swallow = ""
		return
	}
	if s.t.isOuter(id) || s.t.isBranch(id) {
		return
	}
	s.t.activate(id)
}

func (s *HoldStrategy) Progress(id string) float32 {
	if id == "" || id != s.id {
		return 0
	}
	if s.fired {
		return 1
	}
	if s.cfg.HoldDuration <= 0 {
		return 0
	}
	el := float32(s.t.clock().Now().UnixNano()-s.start) / float32(s.cfg.HoldDuration.Nanoseconds())
	return min(1, max(0, el))
}

func (s *HoldStrategy) Reset() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.id = ""
	s.fired = false
	s.swallow = ""
}

// SwipeStrategy expands on hover without delay. Touch drags are hit-tested
// against the menu's button index since enter events do not fire while a
// finger is down; lifting activates the button under the finger.
type SwipeStrategy struct {
	baseStrategy
	t   target
	hit string
}

func (*SwipeStrategy) Mode() Mode               { return ModeSwipe }
func (s *SwipeStrategy) PointerEnter(id string) { s.t.hover(id) }
func (s *SwipeStrategy) Click(id string)        { s.t.activate(id) }

func (s *SwipeStrategy) TouchMove(p geometry.Point) {
	id := s.t.buttonAt(p)
	if id == s.hit {
		return
	}
	s.hit = id
	s.t.setHighlight(id)
	if id != "" {
		s.t.hover(id)
	}
}

func (s *SwipeStrategy) TouchEnd(p geometry.Point) {
	s.TouchMove(p)
	id := s.hit
	s.Reset()
	if id != "" {
		s.t.activate(id)
	}
}

// Hit returns the button currently under the finger.
func (s *SwipeStrategy) Hit() string { return s.hit }

func (s *SwipeStrategy) Reset() {
	s.hit = ""
	s.t.setHighlight("")
}
