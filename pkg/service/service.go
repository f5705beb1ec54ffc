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

// Package service runs the scan, upload and display loop.
package service

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/wartooth/wartooth/pkg/display"
	"github.com/wartooth/wartooth/pkg/metrics"
	"github.com/wartooth/wartooth/pkg/service/state"
	"github.com/wartooth/wartooth/pkg/sessionlog"
	"github.com/wartooth/wartooth/pkg/uploader"
)

type Scanner interface {
	Scan(ctx context.Context) (int, error)
}

type Uploader interface {
	Upload(ctx context.Context, sl sessionlog.SessionLog) (bool, error)
}

// SessionLog is the part of the session log writer the loop drives.
type SessionLog interface {
	Current() sessionlog.SessionLog
	Rotate() (sessionlog.SessionLog, error)
}

type Options struct {
	Clock    clockwork.Clock
	Scanner  Scanner
	Uploader Uploader
	Log      SessionLog
	Renderer display.Renderer
	Metrics  *metrics.Metrics
	Store    *state.Store

	ScanInterval   time.Duration
	UploadInterval time.Duration
}

// Service is the single control loop. Run must not be called concurrently.
type Service struct {
	clock      clockwork.Clock
	scanner    Scanner
	uploader   Uploader
	log        SessionLog
	renderer   display.Renderer
	metrics    *metrics.Metrics
	store      *state.Store
	lastUpload time.Time

	scanInterval   time.Duration
	uploadInterval time.Duration
}

func New(opts Options) *Service {
	s := &Service{
		clock:          opts.Clock,
		scanner:        opts.Scanner,
		uploader:       opts.Uploader,
		log:            opts.Log,
		renderer:       opts.Renderer,
		metrics:        opts.Metrics,
		store:          opts.Store,
		scanInterval:   opts.ScanInterval,
		uploadInterval: opts.UploadInterval,
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.renderer == nil {
		s.renderer = display.NullRenderer{}
	}
	if s.store == nil {
		s.store = state.NewStore(state.Status{})
	}
	return s
}

// State is the status shown on the display.
func (s *Service) State() *state.Store {
	return s.store
}

// Run scans every scan interval and uploads every upload interval until ctx
// is cancelled. A scan or upload already running when ctx is cancelled is
// left to finish or time out on its own. Run always returns nil on
// cancellation; cycle failures only ever change the status message.
func (s *Service) Run(ctx context.Context) error {
	s.lastUpload = s.clock.Now()
	s.show(s.store.SetMessage(MsgReady))

	log.Info().
		Dur("scan_interval", s.scanInterval).
		Dur("upload_interval", s.uploadInterval).
		Msg("Scanner started")

	work := context.WithoutCancel(ctx)
	for {
		s.scanCycle(work)
		if ctx.Err() == nil && s.uploadDue() {
			s.uploadCycle(work)
		}
		s.flushMetrics()

		if !s.sleep(ctx) {
			break
		}
	}

	log.Info().Msg("Shutting down...")
	s.flushMetrics()
	return nil
}

// sleep waits one scan interval. It returns false once ctx is done.
func (s *Service) sleep(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-s.clock.After(s.scanInterval):
		return true
	}
}

func (s *Service) scanCycle(ctx context.Context) {
	s.show(s.store.SetMessage(MsgScanning))

	count, err := s.scanner.Scan(ctx)
	msg := ScanMessage(count, err)

	st := s.store.Update(func(st state.Status) state.Status {
		st.TotalScans++
		st.DevicesFound += count
		st.Message = msg
		return st
	})
	s.metrics.ObserveScan(count, scanFailureReason(err))

	if err == nil {
		log.Info().Int("found", count).Int("total", st.DevicesFound).Msg("Scan complete")
	}
	s.show(st)
}

func (s *Service) uploadDue() bool {
	return s.clock.Since(s.lastUpload) >= s.uploadInterval
}

func (s *Service) uploadCycle(ctx context.Context) {
	defer func() {
		s.lastUpload = s.clock.Now()
	}()

	s.show(s.store.SetMessage(MsgUploading))

	ok, err := s.uploader.Upload(ctx, s.log.Current())
	if !ok {
		if uploader.IsNotReady(err) {
			log.Debug().Err(err).Msg("upload skipped")
		}
		s.metrics.ObserveUpload(uploadResult(err), time.Time{})
		s.show(s.store.SetMessage(UploadMessage(err)))
		return
	}

	now := s.clock.Now()
	msg := MsgUploadOK
	if _, rotErr := s.log.Rotate(); rotErr != nil {
		log.Error().Err(rotErr).Msg("failed to start new session log")
		msg = MsgLogError
	}
	s.metrics.ObserveUpload(metrics.ResultOK, now)

	s.show(s.store.Update(func(st state.Status) state.Status {
		st.LastUpload = now
		st.Message = msg
		return st
	}))
}

func (s *Service) show(st state.Status) {
	s.renderer.Render(st)
}

func (s *Service) flushMetrics() {
	if err := s.metrics.Flush(); err != nil {
		log.Warn().Err(err).Msg("failed to write metrics")
	}
}
