// Wartooth
// Copyright (c) 2026 The Wartooth Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Wartooth.
//
// Wartooth is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Wartooth is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Wartooth.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/wartooth/wartooth/pkg/config"
	"github.com/wartooth/wartooth/pkg/display"
	"github.com/wartooth/wartooth/pkg/helpers"
	"github.com/wartooth/wartooth/pkg/metrics"
	"github.com/wartooth/wartooth/pkg/scanner"
	"github.com/wartooth/wartooth/pkg/service"
	"github.com/wartooth/wartooth/pkg/service/state"
	"github.com/wartooth/wartooth/pkg/sessionlog"
	"github.com/wartooth/wartooth/pkg/uploader"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	showVersion := flag.Bool("version", false, "print version and exit")
	cfgPath := flag.String("config", "", "path to config file (default: $"+config.CfgEnv+" or the boot partition)")
	flag.Parse()

	if *showVersion {
		_, _ = fmt.Printf("%s v%s\n", config.AppName, config.AppVersion)
		return nil
	}

	fs := afero.NewOsFs()
	if *cfgPath == "" {
		*cfgPath = config.ResolvePath(fs)
	}

	err := helpers.InitLogging(helpers.LogOptions{
		Dir:    helpers.LogDir,
		Fields: map[string]any{"boot": uuid.New().String()},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	log.Info().Msg(config.AppTitle)
	log.Info().Str("version", config.AppVersion).Str("config", *cfgPath).Msg("starting")

	cfg, err := config.NewConfig(fs, *cfgPath, config.BaseDefaults)
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
		return fmt.Errorf("failed to load config: %w", err)
	}
	helpers.SetDebugLogging(cfg.DebugLogging())

	if cfg.Created() {
		log.Warn().Str("path", cfg.Path()).Msg("Created config file, please edit it with your WiGLE API credentials")
	}
	if !cfg.APIConfigured() {
		log.Warn().Msg("WiGLE API credentials not configured, uploads are disabled")
	}

	defer func() {
		if err := recover(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %s\n", err)
			log.Fatal().Msgf("panic: %v", err)
		}
	}()

	clock := clockwork.NewRealClock()
	helpers.WarnUnreliableClock(clock.Now())

	renderer := display.New(cfg)
	defer func() {
		if err := renderer.Close(); err != nil {
			log.Error().Err(err).Msg("error closing display")
		}
	}()

	logs := sessionlog.NewWriter(fs, clock, cfg.CSVDir())
	if _, err := logs.Open(); err != nil {
		log.Error().Err(err).Str("dir", cfg.CSVDir()).Msg("failed to open session log")
		return fmt.Errorf("failed to open session log: %w", err)
	}
	defer func() {
		if err := logs.Close(); err != nil {
			log.Error().Err(err).Msg("error closing session log")
		}
	}()
	helpers.WarnLowDiskSpace(cfg.CSVDir())

	svc := service.New(service.Options{
		Clock: clock,
		Scanner: scanner.New(scanner.Options{
			Log:     logs,
			Clock:   clock,
			Adapter: cfg.Adapter(),
			UseSudo: cfg.UseSudo(),
		}),
		Uploader: uploader.New(uploader.Options{
			Fs:       fs,
			Settings: cfg,
		}),
		Log:            logs,
		Renderer:       renderer,
		Metrics:        metrics.New(cfg.MetricsFile()),
		Store:          state.NewStore(state.Status{}),
		ScanInterval:   cfg.ScanInterval(),
		UploadInterval: cfg.UploadInterval(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("scanner stopped: %w", err)
	}

	log.Info().Msg("Scanner stopped")
	return nil
}
