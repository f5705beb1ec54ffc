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

package st7735

import (
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
)

type fakePin struct {
	err    error
	levels []gpio.Level
}

func (p *fakePin) Out(l gpio.Level) error {
	if p.err != nil {
		return p.err
	}
	p.levels = append(p.levels, l)
	return nil
}

func (p *fakePin) level() gpio.Level {
	if len(p.levels) == 0 {
		return gpio.Low
	}
	return p.levels[len(p.levels)-1]
}

type transfer struct {
	data    []byte
	command bool
}

type fakeBus struct {
	dc     *fakePin
	err    error
	writes []transfer
}

func (b *fakeBus) Tx(w, _ []byte) error {
	if b.err != nil {
		return b.err
	}
	b.writes = append(b.writes, transfer{
		command: b.dc.level() == gpio.Low,
		data:    append([]byte(nil), w...),
	})
	return nil
}

type fakeCloser struct {
	calls int
}

func (c *fakeCloser) Close() error {
	c.calls++
	return nil
}

type rig struct {
	dev    *Dev
	bus    *fakeBus
	dc     *fakePin
	rst    *fakePin
	bl     *fakePin
	closer *fakeCloser
	sleeps []time.Duration
}

func newRig() *rig {
	r := &rig{
		dc:     &fakePin{},
		rst:    &fakePin{},
		bl:     &fakePin{},
		closer: &fakeCloser{},
	}
	r.bus = &fakeBus{dc: r.dc}
	r.dev = New(r.bus, r.dc, r.rst, r.bl, &Opts{
		Sleep:  func(d time.Duration) { r.sleeps = append(r.sleeps, d) },
		Closer: r.closer,
	})
	return r
}

// stream flattens the recorded transfers into command/data groups.
func (r *rig) stream() [][]byte {
	var out [][]byte
	for _, w := range r.bus.writes {
		if w.command || len(out) == 0 {
			out = append(out, append([]byte(nil), w.data...))
			continue
		}
		out[len(out)-1] = append(out[len(out)-1], w.data...)
	}
	return out
}

func TestInit_CommandStream(t *testing.T) {
	t.Parallel()

	r := newRig()
	require.NoError(t, r.dev.Init())

	want := [][]byte{
		{0x11},
		{0xB1, 0x01, 0x2C, 0x2D},
		{0xB2, 0x01, 0x2C, 0x2D},
		{0xB3, 0x01, 0x2C, 0x2D, 0x01, 0x2C, 0x2D},
		{0xB4, 0x07},
		{0xC0, 0xA2, 0x02, 0x84},
		{0xC1, 0xC5},
		{0xC2, 0x0A, 0x00},
		{0xC3, 0x8A, 0x2A},
		{0xC4, 0x8A, 0xEE},
		{0xC5, 0x0E},
		{0x36, 0xC8},
		{0x3A, 0x05},
		{0x2A, 0x00, 0x02, 0x00, 0x81},
		{0x2B, 0x00, 0x01, 0x00, 0x80},
		{
			0xE0, 0x02, 0x1C, 0x07, 0x12, 0x37, 0x32, 0x29, 0x2D,
			0x29, 0x25, 0x2B, 0x39, 0x00, 0x01, 0x03, 0x10,
		},
		{
			0xE1, 0x03, 0x1D, 0x07, 0x06, 0x2E, 0x2C, 0x29, 0x2D,
			0x2E, 0x2E, 0x37, 0x3F, 0x00, 0x00, 0x02, 0x10,
		},
		{0x13},
		{0x29},
	}
	assert.Equal(t, want, r.stream())

	for _, w := range r.bus.writes {
		if w.command {
			assert.Len(t, w.data, 1, "commands are sent one byte at a time with DC low")
		}
	}
}

func TestInit_ResetAndDelays(t *testing.T) {
	t.Parallel()

	r := newRig()
	require.NoError(t, r.dev.Init())

	assert.Equal(t, []gpio.Level{gpio.High, gpio.Low, gpio.High}, r.rst.levels)
	assert.Equal(t, []gpio.Level{gpio.High}, r.bl.levels)
	assert.Equal(t, []time.Duration{
		100 * time.Millisecond,
		100 * time.Millisecond,
		100 * time.Millisecond,
		120 * time.Millisecond,
		10 * time.Millisecond,
		120 * time.Millisecond,
	}, r.sleeps)
}

func TestInit_BusError(t *testing.T) {
	t.Parallel()

	r := newRig()
	r.bus.err = errors.New("spi: transfer failed")

	err := r.dev.Init()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0x11")
	assert.Empty(t, r.bl.levels)
}

func TestRGB565(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		c    color.Color
		hi   byte
		lo   byte
	}{
		{name: "black", c: color.RGBA{A: 255}, hi: 0x00, lo: 0x00},
		{name: "white", c: color.RGBA{R: 255, G: 255, B: 255, A: 255}, hi: 0xFF, lo: 0xFF},
		{name: "red", c: color.RGBA{R: 255, A: 255}, hi: 0xF8, lo: 0x00},
		{name: "green", c: color.RGBA{G: 255, A: 255}, hi: 0x07, lo: 0xE0},
		{name: "blue", c: color.RGBA{B: 255, A: 255}, hi: 0x00, lo: 0x1F},
		{name: "status_cyan", c: color.RGBA{G: 200, B: 255, A: 255}, hi: 0x06, lo: 0x5F},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			hi, lo := RGB565(tt.c)
			assert.Equal(t, tt.hi, hi)
			assert.Equal(t, tt.lo, lo)
		})
	}
}

func TestDisplayImage_PacksAndChunks(t *testing.T) {
	t.Parallel()

	r := newRig()
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(Width-1, Height-1, color.RGBA{B: 255, A: 255})

	require.NoError(t, r.dev.DisplayImage(img))

	require.Len(t, r.bus.writes, 1+(Width*Height*2)/MaxTransfer)
	assert.Equal(t, transfer{command: true, data: []byte{0x2C}}, r.bus.writes[0])
	for _, w := range r.bus.writes[1:] {
		assert.False(t, w.command)
		assert.LessOrEqual(t, len(w.data), MaxTransfer)
	}

	frame := r.stream()[0][1:]
	require.Len(t, frame, Width*Height*2)
	assert.Equal(t, []byte{0xF8, 0x00}, frame[:2])
	assert.Equal(t, []byte{0x00, 0x1F}, frame[len(frame)-2:])
	assert.Equal(t, []byte{0x00, 0x00}, frame[2:4])
}

func TestDisplayImage_ScalesOtherSizes(t *testing.T) {
	t.Parallel()

	r := newRig()
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	small := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			small.SetRGBA(x, y, white)
		}
	}

	require.NoError(t, r.dev.DisplayImage(small))

	frame := r.stream()[0][1:]
	require.Len(t, frame, Width*Height*2)
	assert.Equal(t, []byte{0xFF, 0xFF}, frame[:2])
	assert.Equal(t, []byte{0xFF, 0xFF}, frame[len(frame)-2:])
}

func TestHalt(t *testing.T) {
	t.Parallel()

	r := newRig()
	require.NoError(t, r.dev.Init())

	require.NoError(t, r.dev.Halt())
	require.NoError(t, r.dev.Halt())

	assert.Equal(t, []gpio.Level{gpio.High, gpio.Low}, r.bl.levels)
	assert.Equal(t, 1, r.closer.calls)
	assert.Error(t, r.dev.DisplayImage(image.NewRGBA(r.dev.Bounds())))
}
