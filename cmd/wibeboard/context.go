/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
)

var (
	ctxOnce sync.Once
	ctx     context.Context
)

// cmdContext is cancelled on interrupt.
func cmdContext() context.Context {
	ctxOnce.Do(func() {
		ctx, _ = signal.NotifyContext(context.Background(), os.Interrupt)
	})
	return ctx
}
