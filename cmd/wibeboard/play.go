/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"wibeboard/internal/crash"
	"wibeboard/internal/playback"
	"wibeboard/internal/telemetry"
)

func playCmd(a *app) *cobra.Command {
	var (
		list  bool
		all   bool
		quiet bool
	)
	cmd := &cobra.Command{
		Use:   "play [script|file.yaml]...",
		Short: "Run interaction scripts against a headless board",
		Long: "Run interaction scripts against a headless board on a manual clock.\n" +
			"Names are looked up among the bundled scripts first, then as files.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if list {
				listScripts(out)
				return nil
			}
			if all {
				args = playback.Builtins()
			}
			if len(args) == 0 {
				return errors.New("no script given (see --list)")
			}
			failed := 0
			for _, name := range args {
				r, err := a.play(out, name, quiet)
				if err != nil {
					failed++
					continue
				}
				r.Close()
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d scripts failed", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&list, "list", "l", false, "list bundled scripts")
	cmd.Flags().BoolVar(&all, "all", false, "run every bundled script")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the result line")
	return cmd
}

func listScripts(w io.Writer) {
	var rows [][]string
	for _, name := range playback.Builtins() {
		s, err := playback.Builtin(name)
		if err != nil {
			continue
		}
		rows = append(rows, []string{name, fmt.Sprint(len(s.Steps)), s.Description})
	}
	table(w, []string{"Script", "Steps", "Description"}, rows)
}

// play runs one script and prints its transcript. The returned runner is
// still open on success so callers can inspect or export the board.
func (a *app) play(w io.Writer, name string, quiet bool) (*playback.Runner, error) {
	s, err := playback.Open(name)
	if err != nil {
		fmt.Fprintf(w, "%s %s: %v\n", statusIcon(false), name, err)
		return nil, err
	}
	r, err := playback.NewRunner(s, playback.Options{Config: a.cfg, Tracker: telemetry.Default()})
	if err != nil {
		fmt.Fprintf(w, "%s %s: %v\n", statusIcon(false), s.Name, err)
		return nil, err
	}
	defer crash.Recover(&crash.Session{State: r.Board.Describe})

	if !quiet {
		Brand.Fprintf(w, "▶ %s", s.Name)
		if s.Description != "" {
			Subtle.Fprintf(w, "  %s", s.Description)
		}
		fmt.Fprintln(w)
		r.OnStep = func(rec playback.Record) {
			fmt.Fprintf(w, "  %s %3d %-14s %-28s %s\n", statusIcon(rec.Err == nil), rec.Index, rec.Op, clip(rec.Arg, 28), Subtle.Sprint(rec.State))
		}
	}
	recs, err := r.Run(cmdContext())
	if err != nil {
		a.log.Warn("script failed", slog.String("script", s.Name), slog.Any("err", err))
		fmt.Fprintf(w, "%s %s: %v\n", statusIcon(false), s.Name, err)
		r.Close()
		return nil, err
	}
	fmt.Fprintf(w, "%s %s: %d steps\n", statusIcon(true), s.Name, len(recs))
	return r, nil
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
