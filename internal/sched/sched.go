/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package sched provides cancellable one-shot and periodic timers whose
// callbacks run on the UI loop. Every gesture timer (long-press, hold
// activation) and the node-rectangle poller is acquired through a Scheduler
// and released through Timer.Stop on every exit path.
package sched

import (
	"sync"
	"sync/atomic"
	"time"
)

// Timer is a pending callback. Stop prevents any further invocation and
// reports whether the timer was still pending. It is safe to call repeatedly.
type Timer interface {
	Stop() bool
}

// Scheduler creates timers.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
	Every(d time.Duration, fn func()) Timer
	Now() time.Time
}

// Loop is a wall-clock scheduler that posts callbacks onto a UI loop.
type Loop struct {
	post func(func())
}

// NewLoop returns a scheduler that hands callbacks to post (for example
// fyne.Do). A nil post runs callbacks on the timer goroutine.
func NewLoop(post func(func())) *Loop {
	if post == nil {
		post = func(fn func()) { fn() }
	}
	return &Loop{post: post}
}

func (l *Loop) Now() time.Time { return time.Now() }

type loopTimer struct {
	stopped atomic.Bool
	once    sync.Once
	cancel  func()
	oneShot bool
	fired   atomic.Bool
}

func (t *loopTimer) Stop() bool {
	if t.stopped.Swap(true) {
		return false
	}
	t.once.Do(t.cancel)
	return !(t.oneShot && t.fired.Load())
}

func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	t := &loopTimer{oneShot: true}
	tt := time.AfterFunc(d, func() {
		l.post(func() {
			// Stop may have run on the loop after the timer goroutine posted.
			if t.stopped.Load() {
				return
			}
			t.fired.Store(true)
			t.stopped.Store(true)
			fn()
		})
	})
	t.cancel = func() { tt.Stop() }
	return t
}

func (l *Loop) Every(d time.Duration, fn func()) Timer {
	t := &loopTimer{}
	ticker := time.NewTicker(d)
	done := make(chan struct{})
	t.cancel = func() {
		ticker.Stop()
		close(done)
	}
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				l.post(func() {
					if !t.stopped.Load() {
						fn()
					}
				})
			}
		}
	}()
	return t
}
