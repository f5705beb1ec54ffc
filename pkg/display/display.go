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

// Package display renders the scanner status on the attached panel. When
// there is no panel every call is a no-op.
package display

import (
	"errors"
	"image"

	"github.com/rs/zerolog/log"
	"github.com/wartooth/wartooth/pkg/display/st7735"
	"github.com/wartooth/wartooth/pkg/service/state"
)

// ErrDisplayUnavailable means the panel could not be opened. The agent
// keeps running without a display.
var ErrDisplayUnavailable = errors.New("display unavailable")

// Renderer shows a status snapshot. Render never fails: drawing and bus
// errors are logged and swallowed.
type Renderer interface {
	Render(st state.Status)
	Available() bool
	Close() error
}

// Panel is an initialised display device.
type Panel interface {
	DisplayImage(img image.Image) error
	Halt() error
}

// Opener connects to the panel hardware.
type Opener func() (Panel, error)

// NullRenderer is used when the panel is disabled or missing.
type NullRenderer struct{}

func (NullRenderer) Render(state.Status) {}

func (NullRenderer) Available() bool { return false }

func (NullRenderer) Close() error { return nil }

// Settings is the part of the config the factory reads.
type Settings interface {
	DisplayEnabled() bool
}

// New opens the ST7735 panel once at startup, falling back to a
// NullRenderer when it is disabled or cannot be opened.
func New(cfg Settings) Renderer {
	return NewWithOpener(cfg.DisplayEnabled(), openST7735)
}

func NewWithOpener(enabled bool, open Opener) Renderer {
	if !enabled {
		log.Info().Msg("display disabled in config")
		return NullRenderer{}
	}

	panel, err := open()
	if err != nil {
		log.Warn().Err(errors.Join(ErrDisplayUnavailable, err)).Msg("Display init failed, running without display")
		return NullRenderer{}
	}

	r, err := NewPanelRenderer(panel)
	if err != nil {
		log.Warn().Err(errors.Join(ErrDisplayUnavailable, err)).Msg("Display init failed, running without display")
		_ = panel.Halt()
		return NullRenderer{}
	}

	log.Info().Msg("Display initialized")
	return r
}

func openST7735() (Panel, error) {
	return st7735.Open()
}
