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
	"os"
	"path/filepath"
	"testing"
)

//go:embed testdata/*.toml
var testFS embed.FS

func TestBuiltinCatalogue(t *testing.T) {
	reg, err := Builtin()
	if err != nil {
		t.Fatalf("Builtin failed: %v", err)
	}
	g := reg.Grid()
	if g.Cell != 20 || g.Min != 2 {
		t.Fatalf("unexpected grid: %+v", g)
	}
	if c, r := reg.Default(); c != 4 || r != 2 {
		t.Fatalf("unexpected default size %dx%d", c, r)
	}
	for _, typ := range []string{"agent", "script", "note", "group", "user"} {
		if reg.Get(typ) == nil {
			t.Fatalf("missing widget %q", typ)
		}
	}
}

func TestResolveTokens(t *testing.T) {
	reg, err := Builtin()
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		token, typ, tmpl string
	}{
		{"script:py", "script", "py"},
		{"script", "script", "js"},
		{"ai:worker", "agent", "worker"},
		{"ai:reviewer", "agent", "reviewer"},
		{"user", "user", "default"},
	}
	for _, c := range cases {
		w, tm, ok := reg.Resolve(c.token)
		if !ok {
			t.Fatalf("token %q did not resolve", c.token)
		}
		if w.Type != c.typ || tm.Name != c.tmpl {
			t.Fatalf("token %q resolved to %s/%s", c.token, w.Type, tm.Name)
		}
	}
	if _, _, ok := reg.Resolve("script:cobol"); ok {
		t.Fatalf("unknown template should not resolve")
	}
	if _, _, ok := reg.Resolve("job"); ok {
		t.Fatalf("unknown category should not resolve")
	}
}

func TestLoadFromFSLaterFileOverrides(t *testing.T) {
	reg, err := LoadFromFS(testFS, "testdata")
	if err != nil {
		t.Fatalf("LoadFromFS failed: %v", err)
	}
	if g := reg.Grid(); g.Cell != 10 || g.Min != 3 || g.DefaultCols != 5 {
		t.Fatalf("grid not loaded: %+v", g)
	}
	if len(reg.All()) != 2 {
		t.Fatalf("expected 2 widgets after dedup, got %d", len(reg.All()))
	}
	s := reg.Get("script")
	if s == nil || s.Label != "Script (custom)" {
		t.Fatalf("override not applied: %+v", s)
	}
	if _, ok := s.Template("rb"); !ok {
		t.Fatalf("override template missing")
	}
}

func TestLoadFromFSMissingDir(t *testing.T) {
	if _, err := LoadFromFS(testFS, "nope"); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}

func TestLoadWithOverrides(t *testing.T) {
	dir := t.TempDir()
	data := "[[widgets]]\ntype = \"note\"\nlabel = \"Sticky\"\n\n  [[widgets.templates]]\n  name = \"yellow\"\n"
	if err := os.WriteFile(filepath.Join(dir, "note.toml"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.toml"), []byte("[[widgets"), 0o644); err != nil {
		t.Fatal(err)
	}
	reg, err := LoadWithOverrides(dir)
	if err != nil {
		t.Fatalf("LoadWithOverrides failed: %v", err)
	}
	if n := reg.Get("note"); n == nil || n.Label != "Sticky" {
		t.Fatalf("user override not applied: %+v", n)
	}
	if reg.Get("agent") == nil {
		t.Fatalf("builtin widgets lost")
	}

	reg, err = LoadWithOverrides(filepath.Join(dir, "missing"))
	if err != nil || reg.Get("note").Label != "Note" {
		t.Fatalf("missing override dir should yield builtin catalogue")
	}
}
