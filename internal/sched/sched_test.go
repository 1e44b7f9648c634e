/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package sched

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualAfterFuncFiresOnceAtDeadline(t *testing.T) {
	m := NewManual(time.Time{})
	fired := 0
	m.AfterFunc(500*time.Millisecond, func() { fired++ })

	m.Advance(499 * time.Millisecond)
	assert.Equal(t, 0, fired)
	m.Advance(time.Millisecond)
	assert.Equal(t, 1, fired)
	m.Advance(time.Second)
	assert.Equal(t, 1, fired)
	assert.Equal(t, 0, m.Pending())
}

func TestManualStopPreventsFiring(t *testing.T) {
	m := NewManual(time.Time{})
	fired := false
	tm := m.AfterFunc(100*time.Millisecond, func() { fired = true })
	require.Equal(t, 1, m.Pending())

	assert.True(t, tm.Stop())
	assert.False(t, tm.Stop())
	m.Advance(time.Second)
	assert.False(t, fired)
	assert.Equal(t, 0, m.Pending())
}

func TestManualEveryFiresPerPeriodUntilStopped(t *testing.T) {
	m := NewManual(time.Time{})
	n := 0
	tm := m.Every(50*time.Millisecond, func() { n++ })
	m.Advance(175 * time.Millisecond)
	assert.Equal(t, 3, n)
	tm.Stop()
	m.Advance(time.Second)
	assert.Equal(t, 3, n)
	assert.Equal(t, 0, m.Pending())
}

func TestManualFiresInDeadlineOrder(t *testing.T) {
	m := NewManual(time.Time{})
	var order []string
	m.AfterFunc(30*time.Millisecond, func() { order = append(order, "late") })
	m.AfterFunc(10*time.Millisecond, func() { order = append(order, "early") })
	m.AfterFunc(10*time.Millisecond, func() { order = append(order, "early2") })
	m.Advance(time.Second)
	assert.Equal(t, []string{"early", "early2", "late"}, order)
}

func TestManualCallbackCanStopAnotherTimer(t *testing.T) {
	m := NewManual(time.Time{})
	var other Timer
	fired := false
	m.AfterFunc(10*time.Millisecond, func() { other.Stop() })
	other = m.AfterFunc(20*time.Millisecond, func() { fired = true })
	m.Advance(time.Second)
	assert.False(t, fired)
}

func TestLoopAfterFuncPostsToLoop(t *testing.T) {
	posted := make(chan func(), 1)
	l := NewLoop(func(fn func()) { posted <- fn })
	done := make(chan struct{})
	l.AfterFunc(time.Millisecond, func() { close(done) })

	select {
	case fn := <-posted:
		fn()
	case <-time.After(2 * time.Second):
		t.Fatal("timer callback was never posted")
	}
	<-done
}

func TestLoopStopBeforePostedCallbackRuns(t *testing.T) {
	posted := make(chan func(), 1)
	l := NewLoop(func(fn func()) { posted <- fn })
	fired := false
	tm := l.AfterFunc(time.Millisecond, func() { fired = true })

	fn := <-posted
	tm.Stop()
	fn()
	assert.False(t, fired)
}

func TestLoopEveryStops(t *testing.T) {
	posted := make(chan func(), 16)
	l := NewLoop(func(fn func()) {
		select {
		case posted <- fn:
		default:
		}
	})
	n := 0
	tm := l.Every(time.Millisecond, func() { n++ })
	(<-posted)()
	require.True(t, tm.Stop())
	for {
		select {
		case fn := <-posted:
			fn()
			continue
		default:
		}
		break
	}
	assert.Equal(t, 1, n)
}
