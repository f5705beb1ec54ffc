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

// Package metrics keeps scan and upload counters in a private Prometheus
// registry and writes them to a node_exporter textfile.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wartooth"

// Upload results.
const (
	ResultOK       = "ok"
	ResultNoKeys   = "no_api_keys"
	ResultNoData   = "no_data"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Scan failure reasons.
const (
	ReasonTimeout = "timeout"
	ReasonError   = "error"
)

// Metrics is safe to use as a nil pointer, in which case every method is a
// no-op.
type Metrics struct {
	registry     *prometheus.Registry
	scans        prometheus.Counter
	devices      prometheus.Counter
	scanFailures *prometheus.CounterVec
	uploads      *prometheus.CounterVec
	lastUpload   prometheus.Gauge
	textfile     string
}

// New creates a registry with the agent metrics. When textfile is not empty,
// Flush writes the registry there.
func New(textfile string) *Metrics {
	registry := prometheus.NewRegistry()

	scans := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scans_total",
		Help:      "Total number of discovery cycles run",
	})

	devices := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "devices_logged_total",
		Help:      "Total number of device sightings written to session logs",
	})

	scanFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scan_failures_total",
		Help:      "Discovery cycles that produced no results, by reason",
	}, []string{"reason"})

	uploads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_total",
		Help:      "Upload attempts, by result",
	}, []string{"result"})

	lastUpload := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_upload_timestamp_seconds",
		Help:      "Unix time of the last successful upload",
	})

	registry.MustRegister(scans, devices, scanFailures, uploads, lastUpload)

	return &Metrics{
		registry:     registry,
		scans:        scans,
		devices:      devices,
		scanFailures: scanFailures,
		uploads:      uploads,
		lastUpload:   lastUpload,
		textfile:     textfile,
	}
}

// ObserveScan records one discovery cycle. An empty reason means success.
func (m *Metrics) ObserveScan(found int, reason string) {
	if m == nil {
		return
	}
	m.scans.Inc()
	if reason != "" {
		m.scanFailures.WithLabelValues(reason).Inc()
		return
	}
	m.devices.Add(float64(found))
}

// ObserveUpload records one upload attempt.
func (m *Metrics) ObserveUpload(result string, at time.Time) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(result).Inc()
	if result == ResultOK {
		m.lastUpload.Set(float64(at.Unix()))
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Flush writes the textfile atomically. It does nothing when no file is
// configured.
func (m *Metrics) Flush() error {
	if m == nil || m.textfile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(m.textfile, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
