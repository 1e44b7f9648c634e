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
	"io"
	"strings"

	"github.com/spf13/cobra"

	"wibeboard/internal/board"
	"wibeboard/internal/radial"
	"wibeboard/internal/registry"
)

func templatesCmd(a *app) *cobra.Command {
	var menu bool
	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"widgets"},
		Short:   "List widget types and templates offered by the picker",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if menu {
				topo, err := board.Topology(a.cfg)
				if err != nil {
					return err
				}
				printTopology(out, topo)
				return nil
			}
			base, err := registry.Builtin()
			if err != nil {
				return err
			}
			reg := registry.New(board.GridFrom(a.cfg.Canvas, base.Grid()), base.All())
			printRegistry(out, reg)
			return nil
		},
	}
	cmd.Flags().BoolVar(&menu, "menu", false, "print the radial menu tree instead")
	return cmd
}

func printRegistry(w io.Writer, reg *registry.Registry) {
	var rows [][]string
	for _, wd := range reg.All() {
		for _, t := range wd.Templates {
			c, r := t.Cols, t.Rows
			if c == 0 || r == 0 {
				c, r = reg.Default()
			}
			rows = append(rows, []string{wd.Type + ":" + t.Name, wd.Label, t.Label, fmt.Sprintf("%dx%d", c, r), strings.Join(wd.Aliases, ",")})
		}
	}
	table(w, []string{"Token", "Widget", "Template", "Size", "Aliases"}, rows)
	g := reg.Grid()
	Subtle.Fprintf(w, "\n  grid cell %.0f, minimum %d, default %dx%d\n", g.Cell, g.Min, g.DefaultCols, g.DefaultRows)
}

func printTopology(w io.Writer, t radial.Topology) {
	for _, p := range t.Primaries {
		fmt.Fprintf(w, "%s %s %s\n", Brand.Sprint(p.Key), Subtle.Sprintf("(%s, %s)", p.Direction, p.Role), p.Label)
		printItems(w, p.Key, p.Children, 1)
	}
}

func printItems(w io.Writer, prefix string, items []radial.Item, depth int) {
	for _, it := range items {
		id := prefix + radial.PathSep + it.Key
		action := ""
		if it.Action != "" {
			action = Info.Sprint(" → " + it.Action)
		}
		fmt.Fprintf(w, "%s%s %s%s\n", strings.Repeat("  ", depth), Subtle.Sprint(id), it.Label, action)
		printItems(w, id, it.Children, depth+1)
	}
}
