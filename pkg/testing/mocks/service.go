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

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/wartooth/wartooth/pkg/sessionlog"
)

// MockScanner is a testify mock for service.Scanner.
type MockScanner struct {
	mock.Mock
}

func (m *MockScanner) Scan(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	//nolint:wrapcheck // mock returns are classified by the caller
	return args.Int(0), args.Error(1)
}

// MockUploader is a testify mock for service.Uploader.
type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, sl sessionlog.SessionLog) (bool, error) {
	args := m.Called(ctx, sl)
	//nolint:wrapcheck // mock returns are classified by the caller
	return args.Bool(0), args.Error(1)
}

// MockSessionLog is a testify mock for service.SessionLog.
type MockSessionLog struct {
	mock.Mock
}

func (m *MockSessionLog) Current() sessionlog.SessionLog {
	args := m.Called()
	sl, _ := args.Get(0).(sessionlog.SessionLog)
	return sl
}

func (m *MockSessionLog) Rotate() (sessionlog.SessionLog, error) {
	args := m.Called()
	sl, _ := args.Get(0).(sessionlog.SessionLog)
	//nolint:wrapcheck // mock returns are classified by the caller
	return sl, args.Error(1)
}
