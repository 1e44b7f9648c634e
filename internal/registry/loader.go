/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package registry

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed catalog/*.toml
var catalogFS embed.FS

type catalogFile struct {
	Grid    *Grid    `toml:"grid"`
	Widgets []Widget `toml:"widgets"`
}

// Builtin loads the catalogue compiled into the binary.
func Builtin() (*Registry, error) {
	return LoadFromFS(catalogFS, "catalog")
}

// LoadFromFS loads every *.toml file in dir. Files are read in name order; a
// later [grid] table replaces an earlier one.
func LoadFromFS(fsys fs.FS, dir string) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading widget catalogue: %w", err)
	}
	grid := DefaultGrid()
	var widgets []Widget
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		var cf catalogFile
		if err := toml.Unmarshal(data, &cf); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", entry.Name(), err)
		}
		if cf.Grid != nil {
			grid = *cf.Grid
		}
		widgets = append(widgets, cf.Widgets...)
	}
	return New(grid, widgets), nil
}

// LoadWithOverrides merges the built-in catalogue with user files from dir.
// A missing dir is not an error; unreadable or invalid user files are skipped.
func LoadWithOverrides(dir string) (*Registry, error) {
	base, err := Builtin()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return base, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return base, nil
	}
	grid := base.Grid()
	widgets := append([]Widget(nil), base.All()...)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		var cf catalogFile
		if err := toml.Unmarshal(data, &cf); err != nil {
			continue
		}
		if cf.Grid != nil {
			grid = *cf.Grid
		}
		widgets = append(widgets, cf.Widgets...)
	}
	return New(grid, widgets), nil
}
