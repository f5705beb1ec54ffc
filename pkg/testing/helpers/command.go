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
	"github.com/stretchr/testify/mock"
	"github.com/wartooth/wartooth/pkg/testing/mocks"
)

// NewMockCommandExecutor creates a MockCommandExecutor where Run succeeds by
// default. Output has no default: tests state what discovery returns.
//
//	cmd := helpers.NewMockCommandExecutor()
//	cmd.On("Output", mock.Anything, "sudo", []string{"hcitool", "scan", "--flush"}).
//		Return([]byte("Scanning ...\n"), nil)
func NewMockCommandExecutor() *mocks.MockCommandExecutor {
	cmd := &mocks.MockCommandExecutor{}
	cmd.On("Run", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(nil).Maybe()
	return cmd
}
