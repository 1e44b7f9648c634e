/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geometry

// Grid snapping and fan layout helpers for interactive tools. Both are pure
// functions of their arguments so they can be unit-tested and called on every
// pointer event without accumulating error.

import "math"

// GridRect is a rectangle snapped to a uniform grid of square cells.
type GridRect struct {
	X, Y          float32
	Width, Height float32
	Cols, Rows    int
}

// Rect drops the grid metadata.
func (g GridRect) Rect() Rect { return Rect{X: g.X, Y: g.Y, W: g.Width, H: g.Height} }

// GridRectAt returns a cols x rows rectangle with its top-left corner at p.
func GridRectAt(p Point, cols, rows int, cellSize float32) GridRect {
	return GridRect{
		X: p.X, Y: p.Y,
		Width: float32(cols) * cellSize, Height: float32(rows) * cellSize,
		Cols: cols, Rows: rows,
	}
}

// RectFromAnchorAndPointer computes the grid-snapped rectangle spanned between
// a fixed anchor and the current pointer.
//
// The anchor is the vertical center of the rectangle's near edge, so the
// vertical pointer distance measures half the height: rows are always even.
// Horizontally the rectangle opens to the right of the anchor, or to the left
// when the pointer is left of it. Neither dimension drops below minGridUnits
// cells (rows below 2*minGridUnits).
func RectFromAnchorAndPointer(anchor, pointer Point, cellSize float32, minGridUnits int) GridRect {
	if cellSize <= 0 {
		cellSize = 1
	}
	if minGridUnits < 1 {
		minGridUnits = 1
	}
	dx := float64(pointer.X) - float64(anchor.X)
	dy := float64(pointer.Y) - float64(anchor.Y)

	cols := max(minGridUnits, int(math.Round(math.Abs(dx)/float64(cellSize))))
	half := max(minGridUnits, int(math.Round(math.Abs(dy)/float64(cellSize))))
	rows := 2 * half

	w := float32(cols) * cellSize
	h := float32(rows) * cellSize
	x := anchor.X
	if dx < 0 {
		x = anchor.X - w
	}
	return GridRect{X: x, Y: anchor.Y - h/2, Width: w, Height: h, Cols: cols, Rows: rows}
}

// ComputeFanPositions lays out count buttons around center+offset, spaced by
// spacing along the perpendicular of offset. The fan is symmetric: for odd
// counts the middle button sits exactly on center+offset.
func ComputeFanPositions(center, offset Point, spacing float32, count int) []Point {
	if count <= 0 {
		return nil
	}
	base := center.Add(offset)
	perp := offset.Perp().Unit()
	if perp.Equal(Point{}) {
		perp = Point{X: 1}
	}
	mid := float32(count-1) / 2
	out := make([]Point, count)
	for i := range out {
		out[i] = base.Add(perp.Scale((float32(i) - mid) * spacing))
	}
	return out
}
