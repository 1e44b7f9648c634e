/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package placeholder

import (
	"wibeboard/internal/geometry"
	"wibeboard/internal/registry"
)

// Event is raised by the picker UI of a placeholder.
type Event interface {
	PlaceholderID() string
}

// ResizeRequested asks for an explicit resize of a frozen placeholder.
type ResizeRequested struct {
	ID   string
	Rect geometry.GridRect
}

// WidgetSelected reports the widget type and template chosen in the picker.
type WidgetSelected struct {
	ID         string
	WidgetType string
	Template   registry.Template
}

// CancelRequested reports that the picker was dismissed.
type CancelRequested struct {
	ID string
}

// HoverChanged reports the widget type under the picker pointer ("" when none).
type HoverChanged struct {
	ID         string
	WidgetType string
}

func (e ResizeRequested) PlaceholderID() string { return e.ID }
func (e WidgetSelected) PlaceholderID() string  { return e.ID }
func (e CancelRequested) PlaceholderID() string { return e.ID }
func (e HoverChanged) PlaceholderID() string    { return e.ID }

// Subscribe registers fn for picker events. The returned function
// unsubscribes and may be called more than once.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.nextSb++
	sb := &subscriber{id: s.nextSb, fn: fn}
	s.subs = append(s.subs, sb)
	return func() {
		for i, x := range s.subs {
			if x == sb {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers a picker event to subscribers. Events for placeholders
// that no longer exist are dropped, so a picker racing a cancel is harmless.
// It reports whether the event was delivered.
func (s *Store) Publish(e Event) bool {
	if e == nil || !s.Has(e.PlaceholderID()) {
		return false
	}
	for _, sb := range append([]*subscriber(nil), s.subs...) {
		sb.fn(e)
	}
	return true
}

// Subscribers returns the number of active subscriptions.
func (s *Store) Subscribers() int { return len(s.subs) }
