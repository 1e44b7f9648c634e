/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package board

import (
	"fmt"

	"wibeboard/internal/config"
	"wibeboard/internal/connector"
	"wibeboard/internal/radial"
	"wibeboard/internal/registry"
)

// GridFrom overlays the user's canvas settings on the catalogue grid.
func GridFrom(c config.CanvasConfig, base registry.Grid) registry.Grid {
	g := base
	if c.GridCell > 0 {
		g.Cell = c.GridCell
	}
	if c.MinGrid > 0 {
		g.Min = c.MinGrid
	}
	if c.DefaultCols > 0 {
		g.DefaultCols = c.DefaultCols
	}
	if c.DefaultRows > 0 {
		g.DefaultRows = c.DefaultRows
	}
	return g
}

// MenuConfig maps the menu and interaction sections to a radial.Config.
func MenuConfig(cfg config.AppConfig) (radial.Config, error) {
	mode, err := radial.ParseMode(cfg.Menu.Activation)
	if err != nil {
		return radial.Config{}, fmt.Errorf("menu.activation: %w", err)
	}
	var dirs []radial.Direction
	for _, s := range cfg.Menu.Directions {
		d, err := radial.ParseDirection(s)
		if err != nil {
			return radial.Config{}, fmt.Errorf("menu.directions: %w", err)
		}
		dirs = append(dirs, d)
	}
	return radial.Config{
		Mode:         mode,
		Directions:   dirs,
		AvoidOverlap: cfg.Menu.AvoidOverlap,
		Gap:          cfg.Menu.Gap,
		ButtonSize:   cfg.Menu.ButtonSize,
		Margin:       cfg.Menu.Margin,
		Tile:         cfg.Menu.Tile,
		HoldDuration: cfg.Interaction.Hold(),
		PollInterval: cfg.Interaction.Poll(),
	}, nil
}

// Topology returns the configured menu topology, or the built-in one.
func Topology(cfg config.AppConfig) (radial.Topology, error) {
	if cfg.Menu.TopologyFile == "" {
		return radial.DefaultTopology(), nil
	}
	return radial.LoadTopology(cfg.Menu.TopologyFile)
}

// MachineOptions maps the canvas and interaction sections to connector options.
func MachineOptions(cfg config.AppConfig, grid registry.Grid) connector.Options {
	return connector.Options{
		Grid:          grid,
		LongPress:     cfg.Interaction.LongPress(),
		MoveThreshold: cfg.Interaction.MoveThreshold,
		EditMode:      cfg.Canvas.EditMode,
	}
}
