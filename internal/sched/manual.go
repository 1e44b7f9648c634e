/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package sched

import "time"

// Manual is a deterministic scheduler driven by Advance. Callbacks run
// synchronously on the caller's goroutine, which makes it suitable for tests
// and for scripted playback.
type Manual struct {
	now    time.Time
	seq    uint64
	timers []*manualTimer
}

type manualTimer struct {
	m     *Manual
	at    time.Time
	every time.Duration
	seq   uint64
	fn    func()
}

// NewManual starts the clock at start (zero time if omitted).
func NewManual(start time.Time) *Manual { return &Manual{now: start} }

func (m *Manual) Now() time.Time { return m.now }

func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	return m.add(d, 0, fn)
}

func (m *Manual) Every(d time.Duration, fn func()) Timer {
	if d <= 0 {
		d = time.Millisecond
	}
	return m.add(d, d, fn)
}

func (m *Manual) add(d, every time.Duration, fn func()) *manualTimer {
	m.seq++
	t := &manualTimer{m: m, at: m.now.Add(d), every: every, seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

func (t *manualTimer) Stop() bool { return t.m.drop(t) }

func (m *Manual) drop(t *manualTimer) bool {
	for i, x := range m.timers {
		if x == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return true
		}
	}
	return false
}

// Advance moves the clock forward by d, firing due timers in deadline order.
// Periodic timers fire once per elapsed period.
func (m *Manual) Advance(d time.Duration) {
	target := m.now.Add(d)
	for {
		next := m.earliest()
		if next == nil || next.at.After(target) {
			break
		}
		m.now = next.at
		if next.every > 0 {
			next.at = next.at.Add(next.every)
			m.seq++
			next.seq = m.seq
		} else {
			m.drop(next)
		}
		next.fn()
	}
	m.now = target
}

func (m *Manual) earliest() *manualTimer {
	var best *manualTimer
	for _, t := range m.timers {
		if best == nil || t.at.Before(best.at) || (t.at.Equal(best.at) && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

// Pending returns the number of timers that have not fired or been stopped.
func (m *Manual) Pending() int { return len(m.timers) }
