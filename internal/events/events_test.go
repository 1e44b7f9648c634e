/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDispatchesInRegistrationOrder(t *testing.T) {
	b := NewBus()
	var got []string
	b.On(Click, func(*Event) { got = append(got, "a") })
	b.On(Click, func(*Event) { got = append(got, "b") })
	b.On(KeyDown, func(*Event) { got = append(got, "key") })

	b.Dispatch(&Event{Kind: Click})
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 3, b.Count())
	assert.Equal(t, 2, b.CountKind(Click))
}

func TestHandleRemoveIsIdempotent(t *testing.T) {
	b := NewBus()
	h := b.On(PointerMove, func(*Event) {})
	other := b.On(PointerMove, func(*Event) {})
	require.Equal(t, 2, b.Count())

	h.Remove()
	h.Remove()
	assert.Equal(t, 1, b.Count())
	assert.False(t, h.Active())
	assert.True(t, other.Active())

	Handle{}.Remove()
}

func TestListenerRemovedDuringDispatchIsSkipped(t *testing.T) {
	b := NewBus()
	var second Handle
	fired := 0
	b.On(Click, func(*Event) { second.Remove() })
	second = b.On(Click, func(*Event) { fired++ })

	b.Dispatch(&Event{Kind: Click})
	assert.Equal(t, 0, fired)
	assert.Equal(t, 1, b.Count())
}

func TestListenerAddedDuringDispatchSeesNextEventOnly(t *testing.T) {
	b := NewBus()
	fired := 0
	b.On(Click, func(*Event) {
		b.On(Click, func(*Event) { fired++ })
	})
	b.Dispatch(&Event{Kind: Click})
	assert.Equal(t, 0, fired)
	b.Dispatch(&Event{Kind: Click})
	assert.Equal(t, 1, fired)
}

func TestScopeReleaseRestoresBaseline(t *testing.T) {
	b := NewBus()
	b.On(KeyDown, func(*Event) {})
	base := b.Count()

	s := b.Scope()
	s.On(KeyDown, func(*Event) {})
	s.On(ContextMenu, func(*Event) {})
	s.On(PointerMove, func(*Event) {})
	require.Equal(t, base+3, b.Count())
	require.Equal(t, 3, s.Len())

	s.Release()
	assert.Equal(t, base, b.Count())
	assert.Equal(t, 0, s.Len())
	s.Release()
	assert.Equal(t, base, b.Count())
}

func TestPreventDefault(t *testing.T) {
	b := NewBus()
	b.On(ContextMenu, func(e *Event) { e.PreventDefault() })
	e := &Event{Kind: ContextMenu}
	b.Dispatch(e)
	assert.True(t, e.Prevented())
}

func TestKindNamesRoundTrip(t *testing.T) {
	for k := KeyDown; k < numKinds; k++ {
		got, ok := ParseKind(k.String())
		require.True(t, ok, k.String())
		assert.Equal(t, k, got)
	}
	_, ok := ParseKind("wheel")
	assert.False(t, ok)
}
