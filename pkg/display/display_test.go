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

import (
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wartooth/wartooth/pkg/service/state"
	"github.com/wartooth/wartooth/pkg/testing/mocks"
)

func TestNewWithOpener_Disabled(t *testing.T) {
	t.Parallel()

	opened := false
	r := NewWithOpener(false, func() (Panel, error) {
		opened = true
		return nil, nil
	})

	assert.False(t, opened)
	assert.False(t, r.Available())
	assert.IsType(t, NullRenderer{}, r)
}

func TestNewWithOpener_OpenFails(t *testing.T) {
	t.Parallel()

	r := NewWithOpener(true, func() (Panel, error) {
		return nil, errors.New("open /dev/spidev0.0: no such file or directory")
	})

	assert.False(t, r.Available())
	assert.NotPanics(t, func() { r.Render(state.Status{Message: "Ready"}) })
	require.NoError(t, r.Close())
}

func TestNewWithOpener_Panel(t *testing.T) {
	t.Parallel()

	panel := &mocks.MockPanel{}
	panel.On("DisplayImage", mock.AnythingOfType("*image.RGBA")).Return(nil).Once()
	panel.On("Halt").Return(nil).Once()

	r := NewWithOpener(true, func() (Panel, error) { return panel, nil })
	require.True(t, r.Available())

	r.Render(state.Status{Message: "Ready"})
	require.NoError(t, r.Close())

	panel.AssertExpectations(t)
}

func TestRender_SwallowsPanelErrors(t *testing.T) {
	t.Parallel()

	panel := &mocks.MockPanel{}
	panel.On("DisplayImage", mock.Anything).Return(errors.New("spi: transfer failed"))

	r, err := NewPanelRenderer(panel)
	require.NoError(t, err)

	assert.NotPanics(t, func() { r.Render(state.Status{Message: "Scanning..."}) })
	panel.AssertNumberOfCalls(t, "DisplayImage", 1)
}

func TestRender_RecoversPanic(t *testing.T) {
	t.Parallel()

	panel := &mocks.MockPanel{}
	panel.On("DisplayImage", mock.Anything).Run(func(mock.Arguments) {
		panic("bus gone")
	}).Return(nil)

	r, err := NewPanelRenderer(panel)
	require.NoError(t, err)

	assert.NotPanics(t, func() { r.Render(state.Status{}) })
}

func TestNewPanelRenderer_NilPanel(t *testing.T) {
	t.Parallel()

	_, err := NewPanelRenderer(nil)
	require.ErrorIs(t, err, ErrDisplayUnavailable)
}

func TestClose_HaltError(t *testing.T) {
	t.Parallel()

	panel := &mocks.MockPanel{}
	panel.On("Halt").Return(errors.New("gpio busy"))

	r, err := NewPanelRenderer(panel)
	require.NoError(t, err)
	assert.Error(t, r.Close())
}

func rowHas(img *image.RGBA, y int, want color.RGBA) bool {
	for x := 0; x < Width; x++ {
		if img.RGBAAt(x, y) == want {
			return true
		}
	}
	return false
}

func bandHas(img *image.RGBA, y0, y1 int, want color.RGBA) bool {
	for y := y0; y < y1; y++ {
		if rowHas(img, y, want) {
			return true
		}
	}
	return false
}

func TestDraw_Layout(t *testing.T) {
	t.Parallel()

	r, err := NewPanelRenderer(&mocks.MockPanel{})
	require.NoError(t, err)

	r.Draw(state.Status{
		DevicesFound: 12,
		TotalScans:   3,
		Message:      "OK: 4 new",
	})
	frame := r.Frame()

	for _, y := range []int{topRuleY, bottomRuleY} {
		assert.Equal(t, ColorRule, frame.RGBAAt(Margin, y))
		assert.Equal(t, ColorRule, frame.RGBAAt(Width-Margin, y))
		assert.Equal(t, ColorBackground, frame.RGBAAt(Margin-1, y))
	}

	assert.True(t, bandHas(frame, titleY, topRuleY, ColorTitle), "title is drawn above the first rule")
	assert.True(t, bandHas(frame, foundY, uploadY+lineSpacing, ColorCounter), "counters are drawn")
	assert.True(t, bandHas(frame, uploadY, bottomRuleY, ColorUpload), "upload line is drawn")
	assert.True(t, bandHas(frame, messageY, Height, ColorMessage), "message is drawn below the second rule")
	assert.False(t, bandHas(frame, 0, messageY, ColorMessage), "message stays below the second rule")
	assert.Equal(t, ColorBackground, frame.RGBAAt(0, 0))
}

func TestDraw_ClearsPreviousFrame(t *testing.T) {
	t.Parallel()

	r, err := NewPanelRenderer(&mocks.MockPanel{})
	require.NoError(t, err)

	r.Draw(state.Status{Message: "Uploading..."})
	require.True(t, bandHas(r.Frame(), messageY, Height, ColorMessage))

	r.Draw(state.Status{})
	assert.False(t, bandHas(r.Frame(), messageY, Height, ColorMessage))
}

func TestUploadLine(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Upload: pending", UploadLine(state.Status{}))

	at := time.Date(2026, 10, 19, 9, 5, 0, 0, time.UTC)
	assert.Equal(t, "Upload: 09:05", UploadLine(state.Status{LastUpload: at}))
}
