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

package display

import "strings"

const (
	// CharWidth is the estimated advance of one character in pixels.
	CharWidth = 6
	// WrapLimit is the widest line the message area holds.
	WrapLimit = Width - 2*Margin
)

// WrapText greedily packs the words of s into lines no wider than limit
// pixels, estimating CharWidth pixels per rune. A word too long for a line
// of its own is split across lines. Empty input gives no lines.
func WrapText(s string, limit int) []string {
	maxRunes := limit / CharWidth
	if maxRunes < 1 {
		maxRunes = 1
	}

	var lines []string
	var cur []rune
	for _, word := range strings.Fields(s) {
		w := []rune(word)

		for len(w) > maxRunes {
			if len(cur) > 0 {
				lines = append(lines, string(cur))
				cur = nil
			}
			lines = append(lines, string(w[:maxRunes]))
			w = w[maxRunes:]
		}
		if len(w) == 0 {
			continue
		}

		switch {
		case len(cur) == 0:
			cur = append([]rune(nil), w...)
		case len(cur)+1+len(w) <= maxRunes:
			cur = append(append(cur, ' '), w...)
		default:
			lines = append(lines, string(cur))
			cur = append([]rune(nil), w...)
		}
	}
	if len(cur) > 0 {
		lines = append(lines, string(cur))
	}
	return lines
}
