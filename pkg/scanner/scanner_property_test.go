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

package scanner

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// TestPropertyParseOutputRowPerLine verifies one record per non-empty,
// non-banner line.
func TestPropertyParseOutputRowPerLine(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		lines := rapid.SliceOf(rapid.OneOf(
			rapid.Just(""),
			rapid.Just("   "),
			rapid.Just("Scanning ..."),
			rapid.StringMatching(`\t([0-9A-F]{2}:){5}[0-9A-F]{2}`),
			rapid.StringMatching(`\t([0-9A-F]{2}:){5}[0-9A-F]{2}\t[A-Za-z0-9 ]{0,20}`),
		)).Draw(t, "lines")

		want := 0
		for _, l := range lines {
			trimmed := strings.TrimSpace(l)
			if trimmed != "" && !strings.HasPrefix(trimmed, Banner) {
				want++
			}
		}

		got := ParseOutput(strings.Join(lines, "\n"), testStart)
		if len(got) != want {
			t.Fatalf("expected %d records, got %d", want, len(got))
		}
		for _, rec := range got {
			if rec.Name == "" {
				t.Fatalf("record %q has empty name", rec.MAC)
			}
			if strings.ContainsAny(rec.MAC, " \t") {
				t.Fatalf("address %q contains whitespace", rec.MAC)
			}
		}
	})
}
