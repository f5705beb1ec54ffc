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
	"strconv"

	"github.com/wartooth/wartooth/pkg/helpers"
	"github.com/wartooth/wartooth/pkg/metrics"
	"github.com/wartooth/wartooth/pkg/scanner"
	"github.com/wartooth/wartooth/pkg/uploader"
)

// Status messages.
const (
	MsgReady     = "Ready"
	MsgScanning  = "Scanning..."
	MsgUploading = "Uploading..."
	MsgUploadOK  = "Upload OK"
	MsgLogError  = "Log error"

	MsgScanTimeout = "Scan timeout"
	MsgNoAPIKeys   = "No API keys"
	MsgNoData      = "No data"
)

// ScanMessage summarises a scan result for the display.
func ScanMessage(count int, err error) string {
	if err == nil {
		return "OK: " + strconv.Itoa(count) + " new"
	}
	if errors.Is(err, scanner.ErrScanTimeout) {
		return MsgScanTimeout
	}
	var failed *scanner.FailedError
	if errors.As(err, &failed) {
		return "Error: " + failed.Diagnostic
	}
	return "Error: " + helpers.Truncate(err.Error(), scanner.DiagnosticLength)
}

// UploadMessage summarises a failed upload for the display.
func UploadMessage(err error) string {
	switch {
	case err == nil:
		return MsgUploadOK
	case errors.Is(err, uploader.ErrNoAPIKeys):
		return MsgNoAPIKeys
	case errors.Is(err, uploader.ErrNoData):
		return MsgNoData
	}
	var upErr *uploader.UploadError
	if errors.As(err, &upErr) {
		return upErr.Message()
	}
	return "Error: " + helpers.Truncate(err.Error(), uploader.DiagnosticLength)
}

func scanFailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, scanner.ErrScanTimeout):
		return metrics.ReasonTimeout
	default:
		return metrics.ReasonError
	}
}

func uploadResult(err error) string {
	var upErr *uploader.UploadError
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, uploader.ErrNoAPIKeys):
		return metrics.ResultNoKeys
	case errors.Is(err, uploader.ErrNoData):
		return metrics.ResultNoData
	case errors.As(err, &upErr) && upErr.StatusCode != 0:
		return metrics.ResultRejected
	default:
		return metrics.ResultError
	}
}
