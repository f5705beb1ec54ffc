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

package helpers

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

const (
	LogFile = "wartooth.log"
	// LogDir holds the rotating JSON log (tmpfs on Raspberry Pi OS).
	LogDir = "/tmp/wartooth"
)

// LogOptions controls where log output is sent.
type LogOptions struct {
	// Console receives human-readable progress lines. Defaults to stdout.
	Console io.Writer
	// Dir is the directory for the rotating JSON log file. Empty disables it.
	Dir string
	// Fields are attached to every log line.
	Fields map[string]any
	Debug  bool
}

// InitLogging configures the global zerolog logger with a console writer
// and a rotating file sink.
func InitLogging(opts LogOptions) error {
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	logWriters := []io.Writer{zerolog.ConsoleWriter{
		Out:        console,
		TimeFormat: time.TimeOnly,
		NoColor:    true,
	}}

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o750); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		logWriters = append(logWriters, &lumberjack.Logger{
			Filename:   filepath.Join(opts.Dir, LogFile),
			MaxSize:    1,
			MaxBackups: 2,
		})
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	SetDebugLogging(opts.Debug)

	log.Logger = log.Output(io.MultiWriter(logWriters...)).
		With().Timestamp().Fields(opts.Fields).Logger()

	return nil
}

// SetDebugLogging toggles the global log level between debug and info.
func SetDebugLogging(enabled bool) {
	if enabled {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}
