/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package playback

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wibeboard/internal/radial"
)

type recorder struct{ names []string }

func (r *recorder) Event(name string, _ map[string]any) { r.names = append(r.names, name) }

func run(t *testing.T, s *Script, opts Options) ([]Record, error) {
	t.Helper()
	r, err := NewRunner(s, opts)
	require.NoError(t, err)
	t.Cleanup(r.Close)
	return r.Run(context.Background())
}

func TestBuiltinScriptsPass(t *testing.T) {
	names := Builtins()
	require.ElementsMatch(t, []string{"connect", "drop", "menu-click", "menu-hold", "menu-swipe", "rename"}, names)
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			s, err := Builtin(name)
			require.NoError(t, err)
			recs, err := run(t, s, Options{})
			require.NoError(t, err)
			assert.Len(t, recs, len(s.Steps))
		})
	}
}

func TestConnectScriptReportsTelemetry(t *testing.T) {
	s, err := Builtin("connect")
	require.NoError(t, err)
	rec := &recorder{}
	_, err = run(t, s, Options{Tracker: rec})
	require.NoError(t, err)
	assert.Equal(t, []string{"node_created"}, rec.names)
}

func TestCreatedNodesGetSequentialIDs(t *testing.T) {
	s, err := Builtin("connect")
	require.NoError(t, err)
	r, err := NewRunner(s, Options{})
	require.NoError(t, err)
	defer r.Close()
	_, err = r.Run(context.Background())
	require.NoError(t, err)
	n, ok := r.Board.Graph.Node("n1")
	require.True(t, ok)
	assert.Equal(t, "script", n.Type)
}

func TestGeneratedIDsSkipSeededNodes(t *testing.T) {
	s, err := Parse([]byte(`
nodes:
  - {id: n1, token: "agent:worker", at: [100, 100]}
steps:
  - handle_down: n1
  - move: [400, 300]
  - click: [400, 300]
  - click: [400, 300]
  - pick: "script:py"
  - select: n1
  - menu_click: after
  - menu_click: after/job
  - menu_click: after/job/script
  - expect: {nodes: 3, edges: 2}
`))
	require.NoError(t, err)
	r, err := NewRunner(s, Options{})
	require.NoError(t, err)
	defer r.Close()
	_, err = r.Run(context.Background())
	require.NoError(t, err)

	var ids []string
	for _, n := range r.Board.Graph.Nodes() {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"n1", "n2", "n3"}, ids)
	for _, e := range r.Board.Graph.Edges() {
		assert.NotEqual(t, e.Source, e.Target, "edge %s", e.ID)
	}
}

func TestParseRejectsBadSteps(t *testing.T) {
	cases := map[string]string{
		"unknown":  "steps:\n  - fly: [1, 2]\n",
		"two keys": "steps:\n  - {click: [1, 2], move: [3, 4]}\n",
		"scalar":   "steps:\n  - click\n",
		"empty":    "name: nothing\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(src))
			assert.Error(t, err)
		})
	}
}

func TestFailedExpectationStopsScript(t *testing.T) {
	s, err := Parse([]byte(`
steps:
  - expect: {nodes: 3, phase: sizing}
  - click: [10, 10]
`))
	require.NoError(t, err)
	recs, err := run(t, s, Options{})
	require.ErrorIs(t, err, ErrExpectation)
	assert.Contains(t, err.Error(), "nodes = 0, want 3")
	assert.Contains(t, err.Error(), "phase = idle, want sizing")
	require.Len(t, recs, 1)
	assert.Equal(t, err, recs[0].Err)
}

func TestMissingMenuButtonFails(t *testing.T) {
	s, err := Parse([]byte(`
nodes:
  - {id: a, token: "agent:worker", at: [100, 100]}
steps:
  - menu_click: after
`))
	require.NoError(t, err)
	_, err = run(t, s, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `menu button "after" is not visible`)
}

func TestUnknownSeedTokenFailsRunnerSetup(t *testing.T) {
	s, err := Parse([]byte(`
nodes:
  - {id: a, token: "teapot", at: [0, 0]}
steps:
  - wait: 10
`))
	require.NoError(t, err)
	_, err = NewRunner(s, Options{})
	assert.Error(t, err)
}

func TestOnStepSeesEveryRecord(t *testing.T) {
	s, err := Parse([]byte(`
nodes:
  - {id: a, token: "agent:worker", at: [100, 100]}
steps:
  - handle_down: a
  - move: [400, 300]
  - key: Escape
`))
	require.NoError(t, err)
	r, err := NewRunner(s, Options{})
	require.NoError(t, err)
	defer r.Close()
	var seen []Record
	r.OnStep = func(rec Record) { seen = append(seen, rec) }
	_, err = r.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, seen, 3)
	assert.Equal(t, "handle_down", seen[0].Op)
	assert.Equal(t, "a", seen[0].Arg)
	assert.Contains(t, seen[0].State, "phase=positioning")
	assert.Contains(t, seen[1].Arg, "400")
	assert.Contains(t, seen[2].State, "phase=idle")
}

func TestSettingsOverrideActivation(t *testing.T) {
	s, err := Builtin("menu-swipe")
	require.NoError(t, err)
	r, err := NewRunner(s, Options{})
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, radial.ModeSwipe, r.Board.Menu.Strategy().Mode())
}

func TestRunHonoursCancelledContext(t *testing.T) {
	s, err := Builtin("connect")
	require.NoError(t, err)
	r, err := NewRunner(s, Options{})
	require.NoError(t, err)
	defer r.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	recs, err := r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, recs)
}

func TestLoadNamesScriptAfterFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "demo.yaml")
	require.NoError(t, os.WriteFile(file, []byte("steps:\n  - wait: 5\n"), 0o644))

	s, err := Open(file)
	require.NoError(t, err)
	assert.Equal(t, "demo", s.Name)

	_, err = Builtin("demo")
	assert.ErrorIs(t, err, ErrUnknownScript)
}

func TestDropIgnoredOutsideEditMode(t *testing.T) {
	s, err := Parse([]byte(`
steps:
  - drop: {at: [300, 200], token: "note:plain"}
  - expect: {phase: idle, placeholders: 0}
  - drop: {at: [300, 200], raw: "{not json"}
`))
	require.NoError(t, err)
	_, err = run(t, s, Options{})
	assert.NoError(t, err)
}
