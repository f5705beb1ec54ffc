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
	"time"

	"github.com/rs/zerolog/log"
)

// MinReliableYear is the earliest year the system clock can plausibly show.
// A Pi without an RTC boots at the epoch until NTP syncs.
const MinReliableYear = 2025

// IsClockReliable reports whether t looks like a synced wall clock.
func IsClockReliable(t time.Time) bool {
	return t.Year() >= MinReliableYear
}

// WarnUnreliableClock logs a warning when the clock has not been set, since
// log file names and FirstSeen times are taken from it.
func WarnUnreliableClock(now time.Time) bool {
	if IsClockReliable(now) {
		return false
	}
	log.Warn().Time("now", now).Msg("system clock not set, scan timestamps will be wrong until NTP syncs")
	return true
}
