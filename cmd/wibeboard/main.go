/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"wibeboard/internal/config"
	"wibeboard/internal/crash"
	applog "wibeboard/internal/log"
	"wibeboard/internal/telemetry"
	"wibeboard/internal/version"
)

// app carries what every subcommand needs after PersistentPreRunE.
type app struct {
	cfgFile string
	verbose bool
	cfg     config.AppConfig
	log     *slog.Logger
}

func main() {
	a := &app{}
	defer crash.Recover(nil)
	if err := newRootCmd(a).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "wibeboard",
		Short:        "Flow canvas with radial node menus",
		Long:         Brand.Sprint("wibeboard") + ": create and connect flow nodes from handles, drops and radial menus\n" + Subtle.Sprint("Run scripted sessions headless, export snapshots or open the desktop canvas"),
		Version:      version.String(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Telemetry.Timeout())
			defer cancel()
			telemetry.Default().Flush(ctx)
		},
	}
	root.SetVersionTemplate("wibeboard {{ .Version }}\n")
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: per-user config dir, or $"+config.EnvConfigFile+")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "V", false, "debug logging")

	root.AddCommand(
		versionCmd(),
		playCmd(a),
		exportCmd(a),
		templatesCmd(a),
		configCmd(a),
		uiCmd(a),
	)
	return root
}

// init loads the config and installs logging and telemetry from it.
func (a *app) init() error {
	if a.cfgFile != "" {
		if err := os.Setenv(config.EnvConfigFile, a.cfgFile); err != nil {
			return err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}
	a.cfg = cfg
	applog.Init(applog.FromConfig(cfg.Logging))
	a.log = applog.WithComponent("cli")
	telemetry.NewDefault(telemetry.FromConfig(cfg.Telemetry))
	a.log.Debug("config loaded", slog.Int("version", cfg.ConfigVersion), slog.String("activation", cfg.Menu.Activation))
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println("wibeboard", version.String())
		},
	}
}
