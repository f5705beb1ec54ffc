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
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/disk"
)

// MinFreeBytes is the free space below which a warning is logged for the
// scan directory.
const MinFreeBytes = 50 * 1024 * 1024

// FreeBytes returns the free space on the filesystem holding path.
func FreeBytes(path string) (uint64, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return 0, fmt.Errorf("failed to get disk usage for %s: %w", path, err)
	}
	return usage.Free, nil
}

// WarnLowDiskSpace logs a warning when the filesystem holding path is
// nearly full. Errors are logged at debug level only.
func WarnLowDiskSpace(path string) {
	free, err := FreeBytes(path)
	if err != nil {
		log.Debug().Err(err).Msg("could not check free disk space")
		return
	}
	if free < MinFreeBytes {
		log.Warn().
			Str("path", path).
			Uint64("free_bytes", free).
			Msg("low disk space, scan logs may fail to write")
	}
}
