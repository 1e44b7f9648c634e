/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package flow

import "wibeboard/internal/geometry"

// Zoom limits.
const (
	MinZoom float32 = 0.1
	MaxZoom float32 = 4.0
)

// Viewport maps logical (flow) coordinates to screen coordinates:
// screen = logical*Zoom + Pan.
type Viewport struct {
	Pan  geometry.Point
	Zoom float32
}

// NewViewport returns an identity viewport.
func NewViewport() *Viewport { return &Viewport{Zoom: 1} }

func (v *Viewport) zoom() float32 {
	if v.Zoom <= 0 {
		return 1
	}
	return v.Zoom
}

// Transform returns the logical-to-screen transform.
func (v *Viewport) Transform() geometry.Affine2D {
	z := v.zoom()
	return geometry.Translate(v.Pan.X, v.Pan.Y).Mul(geometry.Scale(z, z))
}

func (v *Viewport) ScreenToLogical(p geometry.Point) geometry.Point {
	return v.Transform().Invert().Apply(p)
}

func (v *Viewport) LogicalToScreen(p geometry.Point) geometry.Point {
	return v.Transform().Apply(p)
}

func (v *Viewport) RectToScreen(r geometry.Rect) geometry.Rect {
	return v.Transform().ApplyRect(r)
}

// PanBy shifts the view by a screen-space delta.
func (v *Viewport) PanBy(d geometry.Point) { v.Pan = v.Pan.Add(d) }

// ZoomAt multiplies the zoom by factor, keeping the logical point under
// screen point s fixed. The result is clamped to [MinZoom, MaxZoom].
func (v *Viewport) ZoomAt(s geometry.Point, factor float32) {
	if factor <= 0 {
		return
	}
	anchor := v.ScreenToLogical(s)
	v.Zoom = min(MaxZoom, max(MinZoom, v.zoom()*factor))
	v.Pan = s.Sub(anchor.Scale(v.Zoom))
}
