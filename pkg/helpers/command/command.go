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

// Package command wraps os/exec behind an interface so discovery tools can
// be replaced with mocks in tests.
package command

import (
	"context"
	"os/exec"
	"time"
)

// WaitDelay bounds how long Run and Output keep waiting on a cancelled
// command's pipes before returning.
const WaitDelay = 2 * time.Second

// Executor runs external programs.
type Executor interface {
	// Run executes a command and waits for it to complete. Returns an error
	// if the command fails to start or exits with non-zero status.
	Run(ctx context.Context, name string, args ...string) error

	// Output runs a command and returns its standard output. On a non-zero
	// exit the error is an *exec.ExitError carrying captured stderr.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// RealExecutor runs commands with exec.CommandContext. Each command gets
// its own process group and the whole group is signalled when ctx is done,
// so children started through sudo or a shell stop with it.
type RealExecutor struct{}

func newCommand(ctx context.Context, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	setProcessGroup(cmd)
	cmd.WaitDelay = WaitDelay
	return cmd
}

//nolint:wrapcheck // callers classify exec errors themselves
func (*RealExecutor) Run(ctx context.Context, name string, args ...string) error {
	return newCommand(ctx, name, args...).Run()
}

//nolint:wrapcheck // callers classify exec errors themselves
func (*RealExecutor) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return newCommand(ctx, name, args...).Output()
}

// Sudo prefixes a command with sudo when enabled.
func Sudo(enabled bool, name string, args ...string) (cmd string, cmdArgs []string) {
	if !enabled {
		return name, args
	}
	return "sudo", append([]string{name}, args...)
}
