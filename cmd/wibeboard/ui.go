/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"github.com/spf13/cobra"

	"wibeboard/internal/telemetry"
	"wibeboard/internal/ui"
)

func uiCmd(a *app) *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Open the desktop canvas",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return ui.Run(ui.Options{Config: a.cfg, Tracker: telemetry.Default(), Seed: seed})
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", true, "start with one agent node on the canvas")
	return cmd
}
