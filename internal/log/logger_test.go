/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"wibeboard/internal/config"
)

// Init with a file handler writes JSON logs carrying static and contextual attributes.
func TestInitWritesStructuredFileLog(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "wb.json")
	var console bytes.Buffer
	Init(Options{Level: "debug", Format: "console", File: fpath, Output: &console})
	t.Cleanup(Discard)

	l := WithOperation(WithComponent("connector"), "commit")
	l.Debug("node created", slog.String("node", "n1"))

	b, err := os.ReadFile(fpath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	scanner := bufio.NewScanner(bytes.NewReader(b))
	var last string
	for scanner.Scan() {
		if s := strings.TrimSpace(scanner.Text()); s != "" {
			last = s
		}
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal json log: %v (%q)", err, last)
	}
	if m["app"] != "wibeboard" {
		t.Fatalf("missing app attr: %v", m["app"])
	}
	if m["component"] != "connector" || m["op"] != "commit" || m["node"] != "n1" {
		t.Fatalf("context attrs mismatch: %v", m)
	}
	if !strings.Contains(console.String(), "node created") {
		t.Fatalf("console handler did not receive record: %q", console.String())
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("WB_LOG_LEVEL", "warn")
	t.Setenv("WB_LOG_FORMAT", "json")
	t.Setenv("WB_LOG_SOURCE", "true")
	t.Setenv("WB_LOG_FILE", "")

	opts := FromEnv()
	if opts.Level != "warn" || opts.Format != "json" || !opts.AddSource || opts.File != "" {
		t.Fatalf("FromEnv mismatch: %+v", opts)
	}
	if v := getenv("WB_SOME_UNSET_VAR", "fallback"); v != "fallback" {
		t.Fatalf("getenv fallback failed: %q", v)
	}
}

func TestFromConfig(t *testing.T) {
	opts := FromConfig(config.LoggingConfig{Level: "debug", Format: "json", Source: true, File: "/tmp/wb.log"})
	if opts.Level != "debug" || opts.Format != "json" || !opts.AddSource || opts.File != "/tmp/wb.log" {
		t.Fatalf("FromConfig mismatch: %+v", opts)
	}
}

func TestPrettyHandler(t *testing.T) {
	var buf bytes.Buffer
	h := NewPretty(&buf, slog.LevelWarn, false)
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("info should not be enabled at warn level")
	}

	h2 := h.WithAttrs([]slog.Attr{slog.String("component", "radial")}).WithGroup("menu")
	r := slog.NewRecord(time.Now(), slog.LevelError, "boom", 0)
	r.AddAttrs(slog.Int("n", 42), slog.Float64("pi", 3.14), slog.Bool("ok", true), slog.String("label", "two words"))
	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("handle error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"ERR boom", " component=radial", "menu.n=42", "menu.pi=3.14", "menu.ok=true", `menu.label="two words"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q: %q", want, out)
		}
	}
	if strings.Contains(out, "menu.component") {
		t.Fatalf("attr added before group must not be prefixed: %q", out)
	}
}

func TestDiscardDropsEverything(t *testing.T) {
	Discard()
	if L().Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("discard logger should not be enabled")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{"debug": slog.LevelDebug, " WARN ": slog.LevelWarn, "error": slog.LevelError, "bogus": slog.LevelInfo}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
