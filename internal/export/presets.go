/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0
 */

package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"wibeboard/internal/board"
	"wibeboard/internal/registry"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// BatchOptions controls export of one scene to several formats.
//
// Path semantics:
//   - Files are written as <OutDir>/<Name>.<format>.
//   - An empty OutDir means the preset name, relative to the working directory.
type BatchOptions struct {
	Preset      PresetName
	Formats     []string // allowed: pdf, png; empty means preset defaults
	Name        string   // file base name; empty means "board"
	Scale       float64  // when > 0 overrides the preset scale
	IncludeGrid *bool    // when set, overrides the preset's default for the grid
	IncludeMenu bool
	OutDir      string
}

// BatchExport writes the scene in every requested format and returns the
// written paths.
func BatchExport(s board.Scene, reg *registry.Registry, opt BatchOptions) ([]string, error) {
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	out := opt.OutDir
	if out == "" {
		out = string(opt.Preset)
	}
	name := opt.Name
	if name == "" {
		name = "board"
	}
	eo := Options{Scale: presetScale(opt.Preset), IncludeGrid: presetIncludeGrid(opt.Preset), IncludeMenu: opt.IncludeMenu, Title: name}
	if opt.Scale > 0 {
		eo.Scale = opt.Scale
	}
	if opt.IncludeGrid != nil {
		eo.IncludeGrid = *opt.IncludeGrid
	}

	var written []string
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		path := filepath.Join(out, name+"."+f)
		var err error
		switch f {
		case "pdf":
			err = ExportPDF(s, reg, path, eo)
		case "png":
			err = ExportPNG(s, reg, path, eo)
		default:
			return written, fmt.Errorf("unknown format: %s", f)
		}
		if err != nil {
			return written, fmt.Errorf("%s: %w", f, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// ParsePreset accepts "web" and "print"; empty means web.
func ParsePreset(s string) (PresetName, error) {
	switch p := PresetName(strings.ToLower(strings.TrimSpace(s))); p {
	case "", PresetWeb:
		return PresetWeb, nil
	case PresetPrint:
		return p, nil
	}
	return "", fmt.Errorf("unknown preset %q", s)
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetPrint:
		return []string{"pdf", "png"}
	default:
		return []string{"png"}
	}
}

func presetIncludeGrid(p PresetName) bool {
	return p == PresetPrint
}

func presetScale(p PresetName) float64 {
	if p == PresetPrint {
		return 2
	}
	return 1
}
