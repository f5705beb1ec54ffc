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

// Package state holds the scanner status shown on the display.
package state

import (
	"time"

	"github.com/wartooth/wartooth/pkg/helpers/syncutil"
)

// Status is a snapshot of the agent's counters and latest message. It is a
// plain value: copies never share memory with the Store.
type Status struct {
	LastUpload   time.Time
	Message      string
	DevicesFound int
	TotalScans   int
}

// Uploaded reports whether an upload has ever succeeded.
func (s Status) Uploaded() bool {
	return !s.LastUpload.IsZero()
}

// Store holds the current Status.
//
// LOCKING RULES: the status is replaced as a whole, never field by field.
// Update builds the next value from a copy and swaps it in under one lock,
// so Load never observes a half-applied change.
type Store struct {
	status Status
	mu     syncutil.RWMutex
}

func NewStore(initial Status) *Store {
	return &Store{status: initial}
}

// Load returns a copy of the current status.
func (s *Store) Load() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Update applies fn to a copy of the current status, stores the result and
// returns it. fn must not call back into the Store.
func (s *Store) Update(fn func(Status) Status) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = fn(s.status)
	return s.status
}

// SetMessage replaces only the status message.
func (s *Store) SetMessage(msg string) Status {
	return s.Update(func(st Status) Status {
		st.Message = msg
		return st
	})
}
