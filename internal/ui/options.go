/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package ui is the desktop canvas host. The Fyne binding is only compiled
// with -tags fyne; other builds get a stub so CI stays headless.
package ui

import (
	"wibeboard/internal/config"
	"wibeboard/internal/telemetry"
)

// Options configure Run.
type Options struct {
	Config  config.AppConfig
	Tracker telemetry.Tracker
	// Seed places a starter node so the menu and handle can be tried at once.
	Seed bool
}
