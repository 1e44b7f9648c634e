/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI with a config file that does not exist, so defaults apply.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	var out bytes.Buffer
	cmd := newRootCmd(&app{})
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "config.yaml")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "wibeboard")
}

func TestTemplatesListsRegistryTokens(t *testing.T) {
	out, err := run(t, "templates")
	require.NoError(t, err)
	assert.Contains(t, out, "agent:worker")
	assert.Contains(t, out, "grid cell")
}

func TestTemplatesMenuPrintsTree(t *testing.T) {
	out, err := run(t, "templates", "--menu")
	require.NoError(t, err)
	assert.Contains(t, out, "after/job")
}

func TestPlayListsBundledScripts(t *testing.T) {
	out, err := run(t, "play", "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "menu-swipe")
	assert.Contains(t, out, "connect")
}

func TestPlayRunsScript(t *testing.T) {
	out, err := run(t, "play", "connect")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ connect")
	assert.Contains(t, out, "expect")
}

func TestPlayWithoutScriptFails(t *testing.T) {
	_, err := run(t, "play")
	require.Error(t, err)
}

func TestPlayReportsFailingScript(t *testing.T) {
	file := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(file, []byte("steps:\n  - expect: {nodes: 5}\n"), 0o644))
	out, err := run(t, "play", file)
	require.Error(t, err)
	assert.Contains(t, out, "✗ broken")
}

func TestExportWritesPNG(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "export", "connect", "--format", "png", "--out", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "connect.png")
	st, err := os.Stat(filepath.Join(dir, "connect.png"))
	require.NoError(t, err)
	assert.Positive(t, st.Size())
}

func TestExportRejectsUnknownPreset(t *testing.T) {
	_, err := run(t, "export", "connect", "--preset", "poster")
	require.Error(t, err)
}

func TestConfigShowPrintsDefaults(t *testing.T) {
	out, err := run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "config_version: 1")
}

func TestConfigInitRefusesToOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	for i, want := range []bool{true, false} {
		cmd := newRootCmd(&app{})
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetArgs([]string{"--config", path, "config", "init"})
		err := cmd.Execute()
		assert.Equal(t, want, err == nil, "run %d: %v", i, err)
	}
	_, err := os.Stat(path)
	require.NoError(t, err)
}
