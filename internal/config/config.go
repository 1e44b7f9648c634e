/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.

type CanvasConfig struct {
	GridCell    float32 `yaml:"grid_cell"`
	MinGrid     int     `yaml:"min_grid"`
	DefaultCols int     `yaml:"default_cols"`
	DefaultRows int     `yaml:"default_rows"`
	// EditMode enables drag-and-drop of widgets from the palette.
	EditMode bool `yaml:"edit_mode"`
}

type InteractionConfig struct {
	LongPressMs   int     `yaml:"long_press_ms"`
	HoldMs        int     `yaml:"hold_ms"`
	PollMs        int     `yaml:"poll_ms"`
	MoveThreshold float32 `yaml:"move_threshold_px"`
}

type MenuConfig struct {
	Activation   string   `yaml:"activation"` // "click" | "hold" | "swipe"
	AvoidOverlap bool     `yaml:"avoid_overlap"`
	Gap          float32  `yaml:"gap"`
	ButtonSize   float32  `yaml:"button_size"`
	Margin       float32  `yaml:"margin"`
	Tile         float32  `yaml:"tile"`
	Directions   []string `yaml:"directions"`
	TopologyFile string   `yaml:"topology_file"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type TelemetryConfig struct {
	OptIn     bool   `yaml:"opt_in"`
	EventsURL string `yaml:"events_url"`
	CrashURL  string `yaml:"crash_url"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

type AppConfig struct {
	ConfigVersion int               `yaml:"config_version"`
	Canvas        CanvasConfig      `yaml:"canvas"`
	Interaction   InteractionConfig `yaml:"interaction"`
	Menu          MenuConfig        `yaml:"menu"`
	Logging       LoggingConfig     `yaml:"logging"`
	Telemetry     TelemetryConfig   `yaml:"telemetry"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Canvas:        CanvasConfig{GridCell: 20, MinGrid: 2, DefaultCols: 4, DefaultRows: 2},
		Interaction:   InteractionConfig{LongPressMs: 500, HoldMs: 500, PollMs: 50, MoveThreshold: 5},
		Menu: MenuConfig{
			Activation: "click",
			Gap:        12,
			ButtonSize: 40,
			Margin:     8,
			Tile:       48,
			Directions: []string{"top", "right", "bottom", "left"},
		},
		Logging:   LoggingConfig{Level: "info", Format: "console"},
		Telemetry: TelemetryConfig{TimeoutMs: 1500},
	}
}

// Env var names used as overrides.
const (
	EnvConfigFile     = "WB_CONFIG"
	EnvEditMode       = "WB_EDIT_MODE"
	EnvGridCell       = "WB_GRID_CELL"
	EnvLongPressMs    = "WB_LONG_PRESS_MS"
	EnvHoldMs         = "WB_HOLD_MS"
	EnvMenuActivation = "WB_MENU_ACTIVATION"
	EnvMenuTopology   = "WB_MENU_TOPOLOGY"
	EnvTelemetryOptIn = "WB_TELEMETRY_OPT_IN"
	EnvTelemetryURL   = "WB_TELEMETRY_URL"
	EnvCrashURL       = "WB_CRASH_UPLOAD_URL"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "WB_LOG_LEVEL"
	EnvLogFormat = "WB_LOG_FORMAT"
	EnvLogSource = "WB_LOG_SOURCE"
	EnvLogFile   = "WB_LOG_FILE"
)

// ConfigPath returns the per-user config file path. WB_CONFIG wins when set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "Wibeboard")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "Wibeboard")
	default: // linux and others
		if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
			base = filepath.Join(x, "wibeboard")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "wibeboard")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return Defaults(), err
	}
	return LoadFrom(path)
}

// LoadFrom is Load with an explicit file. A missing file yields defaults; a
// malformed one is an error.
func LoadFrom(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	case !errors.Is(err, os.ErrNotExist):
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func trimLower(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// canvas
	if src.Canvas.GridCell > 0 {
		dst.Canvas.GridCell = src.Canvas.GridCell
	}
	if src.Canvas.MinGrid > 0 {
		dst.Canvas.MinGrid = src.Canvas.MinGrid
	}
	if src.Canvas.DefaultCols > 0 {
		dst.Canvas.DefaultCols = src.Canvas.DefaultCols
	}
	if src.Canvas.DefaultRows > 0 {
		dst.Canvas.DefaultRows = src.Canvas.DefaultRows
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.Canvas.EditMode = src.Canvas.EditMode
	// interaction
	if src.Interaction.LongPressMs > 0 {
		dst.Interaction.LongPressMs = src.Interaction.LongPressMs
	}
	if src.Interaction.HoldMs > 0 {
		dst.Interaction.HoldMs = src.Interaction.HoldMs
	}
	if src.Interaction.PollMs > 0 {
		dst.Interaction.PollMs = src.Interaction.PollMs
	}
	if src.Interaction.MoveThreshold > 0 {
		dst.Interaction.MoveThreshold = src.Interaction.MoveThreshold
	}
	// menu
	if v := trimLower(src.Menu.Activation); v != "" {
		dst.Menu.Activation = v
	}
	dst.Menu.AvoidOverlap = src.Menu.AvoidOverlap
	if src.Menu.Gap > 0 {
		dst.Menu.Gap = src.Menu.Gap
	}
	if src.Menu.ButtonSize > 0 {
		dst.Menu.ButtonSize = src.Menu.ButtonSize
	}
	if src.Menu.Margin > 0 {
		dst.Menu.Margin = src.Menu.Margin
	}
	if src.Menu.Tile > 0 {
		dst.Menu.Tile = src.Menu.Tile
	}
	if len(src.Menu.Directions) > 0 {
		dst.Menu.Directions = append([]string(nil), src.Menu.Directions...)
	}
	if v := strings.TrimSpace(src.Menu.TopologyFile); v != "" {
		dst.Menu.TopologyFile = v
	}
	// logging
	if v := trimLower(src.Logging.Level); v != "" {
		dst.Logging.Level = v
	}
	if v := trimLower(src.Logging.Format); v != "" {
		dst.Logging.Format = v
	}
	dst.Logging.Source = src.Logging.Source
	if v := strings.TrimSpace(src.Logging.File); v != "" {
		dst.Logging.File = v
	}
	// telemetry
	dst.Telemetry.OptIn = src.Telemetry.OptIn
	if v := strings.TrimSpace(src.Telemetry.EventsURL); v != "" {
		dst.Telemetry.EventsURL = v
	}
	if v := strings.TrimSpace(src.Telemetry.CrashURL); v != "" {
		dst.Telemetry.CrashURL = v
	}
	if src.Telemetry.TimeoutMs > 0 {
		dst.Telemetry.TimeoutMs = src.Telemetry.TimeoutMs
	}
}

func parseBool(v string) bool {
	lv := trimLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func envInt(name string, dst *int) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*dst = n
		}
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvEditMode)); v != "" {
		cfg.Canvas.EditMode = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvGridCell)); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil && f > 0 {
			cfg.Canvas.GridCell = float32(f)
		}
	}
	envInt(EnvLongPressMs, &cfg.Interaction.LongPressMs)
	envInt(EnvHoldMs, &cfg.Interaction.HoldMs)
	if v := trimLower(os.Getenv(EnvMenuActivation)); v != "" {
		cfg.Menu.Activation = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvMenuTopology)); v != "" {
		cfg.Menu.TopologyFile = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.Telemetry.OptIn = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryURL)); v != "" {
		cfg.Telemetry.EventsURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvCrashURL)); v != "" {
		cfg.Telemetry.CrashURL = v
	}
	// logging overrides
	if v := trimLower(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = v
	}
	if v := trimLower(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var envKeys = map[string]string{
	"canvas.edit_mode":          EnvEditMode,
	"canvas.grid_cell":          EnvGridCell,
	"interaction.long_press_ms": EnvLongPressMs,
	"interaction.hold_ms":       EnvHoldMs,
	"menu.activation":           EnvMenuActivation,
	"menu.topology_file":        EnvMenuTopology,
	"telemetry.opt_in":          EnvTelemetryOptIn,
	"telemetry.events_url":      EnvTelemetryURL,
	"telemetry.crash_url":       EnvCrashURL,
	"logging.level":             EnvLogLevel,
	"logging.format":            EnvLogFormat,
	"logging.source":            EnvLogSource,
	"logging.file":              EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envKeys[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// LongPress is the node long-press duration.
func (i InteractionConfig) LongPress() time.Duration { return ms(i.LongPressMs) }

// Hold is the radial menu hold-to-expand duration.
func (i InteractionConfig) Hold() time.Duration { return ms(i.HoldMs) }

// Poll is the radial menu locator polling interval.
func (i InteractionConfig) Poll() time.Duration { return ms(i.PollMs) }

// Timeout is the telemetry request timeout.
func (t TelemetryConfig) Timeout() time.Duration {
	if t.TimeoutMs <= 0 {
		return ms(Defaults().Telemetry.TimeoutMs)
	}
	return ms(t.TimeoutMs)
}
