/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"wibeboard/internal/export"
)

func exportCmd(a *app) *cobra.Command {
	var (
		preset  string
		formats string
		outDir  string
		name    string
		scale   float64
		menu    bool
		noGrid  bool
		grid    bool
	)
	cmd := &cobra.Command{
		Use:   "export <script|file.yaml>",
		Short: "Run a script and export the final board as PNG or PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := export.ParsePreset(preset)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			r, err := a.play(out, args[0], true)
			if err != nil {
				return err
			}
			defer r.Close()

			opt := export.BatchOptions{Preset: p, Name: name, Scale: scale, IncludeMenu: menu, OutDir: outDir}
			if name == "" {
				opt.Name = r.Script.Name
			}
			if formats != "" {
				opt.Formats = strings.Split(formats, ",")
			}
			switch {
			case grid:
				opt.IncludeGrid = &grid
			case noGrid:
				off := false
				opt.IncludeGrid = &off
			}
			paths, err := export.BatchExport(r.Board.Scene(), r.Board.Registry, opt)
			for _, path := range paths {
				fmt.Fprintf(out, "%s %s\n", statusIcon(true), path)
			}
			if err != nil {
				return fmt.Errorf("export %s: %w", r.Script.Name, err)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&preset, "preset", "p", "web", "export preset: web|print")
	f.StringVarP(&formats, "format", "f", "", "comma separated formats (pdf,png); default from preset")
	f.StringVarP(&outDir, "out", "o", "", "output directory (default: preset name)")
	f.StringVar(&name, "name", "", "file base name (default: script name)")
	f.Float64Var(&scale, "scale", 0, "override the preset scale")
	f.BoolVar(&menu, "menu", false, "draw the radial menu if it is open")
	f.BoolVar(&grid, "grid", false, "draw the placement grid")
	f.BoolVar(&noGrid, "no-grid", false, "never draw the placement grid")
	cmd.MarkFlagsMutuallyExclusive("grid", "no-grid")
	return cmd
}
