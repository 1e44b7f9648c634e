/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package playback runs YAML scripts of input steps against a headless board
// on a manual clock. Scripts seed nodes, drive pointer, key, drop, picker
// and menu input, and assert on the resulting state.
package playback

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"wibeboard/internal/config"
	"wibeboard/internal/geometry"
)

//go:embed scripts/*.yaml
var scriptsFS embed.FS

// ErrUnknownScript is returned by Builtin.
var ErrUnknownScript = errors.New("unknown builtin script")

// Point is a YAML [x, y] pair in screen pixels.
type Point geometry.Point

func (p *Point) UnmarshalYAML(n *yaml.Node) error {
	var xy []float32
	if err := n.Decode(&xy); err != nil || len(xy) != 2 {
		return fmt.Errorf("line %d: expected [x, y]", n.Line)
	}
	*p = Point{X: xy[0], Y: xy[1]}
	return nil
}

func (p Point) geo() geometry.Point { return geometry.Point(p) }

// Seed is a host node present before the first step. At is logical.
type Seed struct {
	ID    string `yaml:"id"`
	Token string `yaml:"token"`
	Label string `yaml:"label"`
	At    Point  `yaml:"at"`
}

// Settings override the user config for one script.
type Settings struct {
	Activation   string `yaml:"activation"`
	EditMode     *bool  `yaml:"edit_mode"`
	AvoidOverlap *bool  `yaml:"avoid_overlap"`
}

func (s Settings) apply(cfg *config.AppConfig) {
	if s.Activation != "" {
		cfg.Menu.Activation = strings.ToLower(strings.TrimSpace(s.Activation))
	}
	if s.EditMode != nil {
		cfg.Canvas.EditMode = *s.EditMode
	}
	if s.AvoidOverlap != nil {
		cfg.Menu.AvoidOverlap = *s.AvoidOverlap
	}
}

// Step is a single action: a one-key mapping such as `click: [400, 300]`.
type Step struct {
	Op   string
	Line int
	arg  yaml.Node
}

func (s *Step) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return fmt.Errorf("line %d: a step is a mapping with exactly one action", n.Line)
	}
	s.Op, s.Line, s.arg = n.Content[0].Value, n.Line, *n.Content[1]
	if _, ok := ops[s.Op]; !ok {
		return fmt.Errorf("line %d: unknown step %q", n.Line, s.Op)
	}
	return nil
}

// Arg returns the step's argument as YAML text, for transcripts.
func (s Step) Arg() string {
	if s.arg.Kind == yaml.ScalarNode {
		return s.arg.Value
	}
	b, err := yaml.Marshal(&s.arg)
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(string(b)), " ")
}

// Script is a parsed playback file.
type Script struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Settings    Settings `yaml:"settings"`
	Nodes       []Seed   `yaml:"nodes"`
	Steps       []Step   `yaml:"steps"`
}

// Parse decodes a script.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(s.Steps) == 0 {
		return nil, errors.New("parse script: no steps")
	}
	return &s, nil
}

// Load reads a script file. The script name defaults to the file name.
func Load(file string) (*Script, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(path.Base(file), path.Ext(file))
	}
	return s, nil
}

// Builtin returns one of the bundled demo scripts by name.
func Builtin(name string) (*Script, error) {
	data, err := scriptsFS.ReadFile("scripts/" + name + ".yaml")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScript, name)
	}
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if s.Name == "" {
		s.Name = name
	}
	return s, nil
}

// Builtins lists the bundled script names.
func Builtins() []string {
	entries, _ := fs.ReadDir(scriptsFS, "scripts")
	var out []string
	for _, e := range entries {
		out = append(out, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(out)
	return out
}

// Open resolves a name as a builtin script first and then as a file.
func Open(nameOrFile string) (*Script, error) {
	if s, err := Builtin(nameOrFile); err == nil {
		return s, nil
	}
	return Load(nameOrFile)
}
