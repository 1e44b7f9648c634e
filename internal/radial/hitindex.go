/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package radial

import "wibeboard/internal/geometry"

// HitIndex maps button ids to screen rectangles for point queries during
// touch drags. Later entries are on top.
type HitIndex struct {
	entries []hitEntry
}

type hitEntry struct {
	id   string
	rect geometry.Rect
}

func (h *HitIndex) Reset() { h.entries = h.entries[:0] }

func (h *HitIndex) Add(id string, r geometry.Rect) {
	h.entries = append(h.entries, hitEntry{id: id, rect: r})
}

// At returns the topmost id whose rectangle contains p.
func (h *HitIndex) At(p geometry.Point) (string, bool) {
	for i := len(h.entries) - 1; i >= 0; i-- {
		if h.entries[i].rect.Contains(p) {
			return h.entries[i].id, true
		}
	}
	return "", false
}

func (h *HitIndex) Len() int { return len(h.entries) }
