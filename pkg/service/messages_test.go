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

package service

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wartooth/wartooth/pkg/metrics"
	"github.com/wartooth/wartooth/pkg/scanner"
	"github.com/wartooth/wartooth/pkg/uploader"
)

func TestScanMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err   error
		name  string
		want  string
		count int
	}{
		{name: "ok", count: 7, want: "OK: 7 new"},
		{name: "ok_zero", want: "OK: 0 new"},
		{name: "timeout", err: scanner.ErrScanTimeout, want: "Scan timeout"},
		{
			name: "failed",
			err:  &scanner.FailedError{Err: errors.New("x"), Diagnostic: "Inquiry failed: Conn"},
			want: "Error: Inquiry failed: Conn",
		},
		{name: "other", err: errors.New("something unexpected went wrong"), want: "Error: something unexpected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ScanMessage(tt.count, tt.err))
		})
	}
}

func TestUploadMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		name string
		want string
	}{
		{name: "ok", want: "Upload OK"},
		{name: "no_keys", err: uploader.ErrNoAPIKeys, want: "No API keys"},
		{name: "no_data", err: uploader.ErrNoData, want: "No data"},
		{name: "forbidden", err: &uploader.UploadError{StatusCode: http.StatusForbidden}, want: "Error 403"},
		{
			name: "transport",
			err:  &uploader.UploadError{Err: errors.New("context deadline exceeded")},
			want: "Error: context deadlin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, UploadMessage(tt.err))
		})
	}
}

func TestUploadResult(t *testing.T) {
	t.Parallel()

	assert.Equal(t, metrics.ResultOK, uploadResult(nil))
	assert.Equal(t, metrics.ResultNoKeys, uploadResult(uploader.ErrNoAPIKeys))
	assert.Equal(t, metrics.ResultNoData, uploadResult(uploader.ErrNoData))
	assert.Equal(t, metrics.ResultRejected, uploadResult(&uploader.UploadError{StatusCode: 500}))
	assert.Equal(t, metrics.ResultError, uploadResult(&uploader.UploadError{Err: errors.New("eof")}))
}

func TestScanFailureReason(t *testing.T) {
	t.Parallel()

	assert.Empty(t, scanFailureReason(nil))
	assert.Equal(t, metrics.ReasonTimeout, scanFailureReason(scanner.ErrScanTimeout))
	assert.Equal(t, metrics.ReasonError, scanFailureReason(&scanner.FailedError{Err: errors.New("x")}))
}
