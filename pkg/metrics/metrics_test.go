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

package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveScan(3, "")
		m.ObserveUpload(ResultOK, time.Now())
		assert.NoError(t, m.Flush())
		assert.Nil(t, m.Registry())
	})
}

func TestFlushWithoutTextfile(t *testing.T) {
	t.Parallel()

	m := New("")
	m.ObserveScan(1, "")
	require.NoError(t, m.Flush())
}

func TestFlushWritesCounters(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "wartooth.prom")
	m := New(path)

	m.ObserveScan(4, "")
	m.ObserveScan(2, "")
	m.ObserveScan(0, ReasonTimeout)
	m.ObserveUpload(ResultNoKeys, time.Time{})
	m.ObserveUpload(ResultOK, time.Unix(1792420205, 0))

	require.NoError(t, m.Flush())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, "wartooth_scans_total 3")
	assert.Contains(t, out, "wartooth_devices_logged_total 6")
	assert.Contains(t, out, `wartooth_scan_failures_total{reason="timeout"} 1`)
	assert.Contains(t, out, `wartooth_uploads_total{result="no_api_keys"} 1`)
	assert.Contains(t, out, `wartooth_uploads_total{result="ok"} 1`)
	assert.Contains(t, out, "wartooth_last_upload_timestamp_seconds 1.792420205e+09")
}

func TestFlushBadPath(t *testing.T) {
	t.Parallel()

	m := New(filepath.Join(t.TempDir(), "missing", "wartooth.prom"))
	assert.Error(t, m.Flush())
}

func TestRegistryGathers(t *testing.T) {
	t.Parallel()

	m := New("")
	m.ObserveScan(1, "")

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
