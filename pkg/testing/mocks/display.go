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
	"image"

	"github.com/stretchr/testify/mock"
	"github.com/wartooth/wartooth/pkg/service/state"
)

// MockRenderer is a testify mock for display.Renderer.
type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(st state.Status) {
	m.Called(st)
}

func (m *MockRenderer) Available() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockRenderer) Close() error {
	args := m.Called()
	//nolint:wrapcheck // mock returns are passed through unchanged
	return args.Error(0)
}

// Messages returns the status message of every Render call in order.
func (m *MockRenderer) Messages() []string {
	var msgs []string
	for _, call := range m.Calls {
		if call.Method != "Render" {
			continue
		}
		if st, ok := call.Arguments.Get(0).(state.Status); ok {
			msgs = append(msgs, st.Message)
		}
	}
	return msgs
}

// MockPanel is a testify mock for display.Panel.
type MockPanel struct {
	mock.Mock
}

func (m *MockPanel) DisplayImage(img image.Image) error {
	args := m.Called(img)
	//nolint:wrapcheck // mock returns are passed through unchanged
	return args.Error(0)
}

func (m *MockPanel) Halt() error {
	args := m.Called()
	//nolint:wrapcheck // mock returns are passed through unchanged
	return args.Error(0)
}
