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

// Package scanner runs Bluetooth classic discovery through hcitool and
// records every sighting in the session log.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/wartooth/wartooth/pkg/helpers"
	"github.com/wartooth/wartooth/pkg/helpers/command"
	"github.com/wartooth/wartooth/pkg/sessionlog"
)

const (
	ScanTool      = "hcitool"
	InterfaceTool = "hciconfig"

	// Banner is the first line hcitool prints before any results.
	Banner      = "Scanning"
	UnknownName = "Unknown"

	DefaultScanTimeout      = 15 * time.Second
	DefaultInterfaceTimeout = 5 * time.Second

	// DiagnosticLength is how much of a failure message fits the display.
	DiagnosticLength = 20
)

var (
	// ErrScanTimeout means discovery ran past its time limit.
	ErrScanTimeout = errors.New("scan timeout")
	// ErrScanFailed matches every *FailedError.
	ErrScanFailed = errors.New("scan failed")
)

// FailedError is a discovery failure other than a timeout.
type FailedError struct {
	Err error
	// Diagnostic is a short description suitable for the status display.
	Diagnostic string
}

func (e *FailedError) Error() string {
	return "scan failed: " + e.Err.Error()
}

func (e *FailedError) Unwrap() error {
	return e.Err
}

func (*FailedError) Is(target error) bool {
	return target == ErrScanFailed
}

func newFailedError(err error) *FailedError {
	diag := err.Error()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if stderr := strings.TrimSpace(string(exitErr.Stderr)); stderr != "" {
			diag = stderr
		}
	}
	return &FailedError{
		Err:        err,
		Diagnostic: helpers.Truncate(diag, DiagnosticLength),
	}
}

// Appender receives parsed sightings.
type Appender interface {
	AppendRows(records []sessionlog.DeviceRecord) error
}

type Options struct {
	Executor command.Executor
	Log      Appender
	Clock    clockwork.Clock
	Adapter  string
	// ScanTimeout bounds the discovery command. Zero means
	// DefaultScanTimeout.
	ScanTimeout time.Duration
	UseSudo     bool
}

type Scanner struct {
	exec        command.Executor
	log         Appender
	clock       clockwork.Clock
	adapter     string
	scanTimeout time.Duration
	useSudo     bool
}

func New(opts Options) *Scanner {
	s := &Scanner{
		exec:        opts.Executor,
		log:         opts.Log,
		clock:       opts.Clock,
		adapter:     opts.Adapter,
		scanTimeout: opts.ScanTimeout,
		useSudo:     opts.UseSudo,
	}
	if s.exec == nil {
		s.exec = &command.RealExecutor{}
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.scanTimeout <= 0 {
		s.scanTimeout = DefaultScanTimeout
	}
	if s.adapter == "" {
		s.adapter = "hci0"
	}
	return s
}

// Scan brings the adapter up, runs one discovery pass and appends every
// result to the log. It returns the number of rows appended. All failures
// come back as ErrScanTimeout or ErrScanFailed with a zero count.
func (s *Scanner) Scan(ctx context.Context) (count int, err error) {
	defer func() {
		if r := recover(); r != nil {
			count = 0
			err = newFailedError(fmt.Errorf("panic: %v", r))
		}
	}()

	s.ensureInterfaceUp(ctx)

	scanCtx, cancel := context.WithTimeout(ctx, s.scanTimeout)
	defer cancel()

	name, args := command.Sudo(s.useSudo, ScanTool, "scan", "--flush")
	out, err := s.exec.Output(scanCtx, name, args...)
	if err != nil {
		if errors.Is(scanCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
			log.Warn().Dur("timeout", s.scanTimeout).Msg("Scan timeout")
			return 0, ErrScanTimeout
		}
		failed := newFailedError(err)
		log.Error().Err(err).Msg("Scan error")
		return 0, failed
	}

	records := ParseOutput(string(out), s.clock.Now())
	if err := s.log.AppendRows(records); err != nil {
		log.Error().Err(err).Msg("Scan error")
		return 0, newFailedError(err)
	}

	return len(records), nil
}

// ensureInterfaceUp is best effort: the adapter is usually already up and
// a failure here shows up again as a scan error.
func (s *Scanner) ensureInterfaceUp(ctx context.Context) {
	upCtx, cancel := context.WithTimeout(ctx, DefaultInterfaceTimeout)
	defer cancel()

	name, args := command.Sudo(s.useSudo, InterfaceTool, s.adapter, "up")
	if err := s.exec.Run(upCtx, name, args...); err != nil {
		log.Debug().Err(err).Str("adapter", s.adapter).Msg("failed to bring adapter up")
	}
}

// ParseOutput turns hcitool scan output into device records. Blank lines
// and the banner line are skipped. Each remaining line is split at its
// first run of whitespace into address and name; a missing name becomes
// "Unknown". All records share the timestamp seen.
func ParseOutput(out string, seen time.Time) []sessionlog.DeviceRecord {
	var records []sessionlog.DeviceRecord
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, Banner) {
			continue
		}

		mac, name := line, ""
		if i := strings.IndexFunc(line, unicode.IsSpace); i >= 0 {
			mac = line[:i]
			name = strings.TrimSpace(line[i:])
		}
		if name == "" {
			name = UnknownName
		}

		records = append(records, sessionlog.DeviceRecord{
			MAC:       mac,
			Name:      name,
			FirstSeen: seen,
		})
	}
	return records
}
