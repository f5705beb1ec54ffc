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

// Package st7735 drives an ST7735S 128x128 colour panel, such as the
// Waveshare 1.44" LCD HAT, over SPI with separate data/command, reset and
// backlight lines.
package st7735

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	xdraw "golang.org/x/image/draw"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	host "periph.io/x/host/v3"
)

const (
	Width  = 128
	Height = 128

	DefaultPort      = "SPI0.0"
	DefaultFrequency = 4 * physic.MegaHertz
	DefaultDCPin     = "GPIO25"
	DefaultResetPin  = "GPIO27"
	DefaultBLPin     = "GPIO24"

	// MaxTransfer is the spidev per-transfer limit.
	MaxTransfer = 4096

	resetDelay = 100 * time.Millisecond
)

// Commands used outside the init table.
const (
	cmdSleepOut    = 0x11
	cmdNormalOn    = 0x13
	cmdDisplayOn   = 0x29
	cmdColumnAddr  = 0x2A
	cmdRowAddr     = 0x2B
	cmdMemoryWrite = 0x2C
	cmdMADCTL      = 0x36
	cmdColorMode   = 0x3A
)

var ErrPinMissing = errors.New("gpio pin not found")

type step struct {
	data  []byte
	delay time.Duration
	cmd   byte
}

// initSequence brings the controller out of sleep into 16-bit colour with
// the 2/1 offset window the 1.44" HAT needs.
var initSequence = []step{
	{cmd: cmdSleepOut, delay: 120 * time.Millisecond},
	{cmd: 0xB1, data: []byte{0x01, 0x2C, 0x2D}},
	{cmd: 0xB2, data: []byte{0x01, 0x2C, 0x2D}},
	{cmd: 0xB3, data: []byte{0x01, 0x2C, 0x2D, 0x01, 0x2C, 0x2D}},
	{cmd: 0xB4, data: []byte{0x07}},
	{cmd: 0xC0, data: []byte{0xA2, 0x02, 0x84}},
	{cmd: 0xC1, data: []byte{0xC5}},
	{cmd: 0xC2, data: []byte{0x0A, 0x00}},
	{cmd: 0xC3, data: []byte{0x8A, 0x2A}},
	{cmd: 0xC4, data: []byte{0x8A, 0xEE}},
	{cmd: 0xC5, data: []byte{0x0E}},
	{cmd: cmdMADCTL, data: []byte{0xC8}},
	{cmd: cmdColorMode, data: []byte{0x05}},
	{cmd: cmdColumnAddr, data: []byte{0x00, 0x02, 0x00, 0x81}},
	{cmd: cmdRowAddr, data: []byte{0x00, 0x01, 0x00, 0x80}},
	{cmd: 0xE0, data: []byte{
		0x02, 0x1C, 0x07, 0x12, 0x37, 0x32, 0x29, 0x2D,
		0x29, 0x25, 0x2B, 0x39, 0x00, 0x01, 0x03, 0x10,
	}},
	{cmd: 0xE1, data: []byte{
		0x03, 0x1D, 0x07, 0x06, 0x2E, 0x2C, 0x29, 0x2D,
		0x2E, 0x2E, 0x37, 0x3F, 0x00, 0x00, 0x02, 0x10,
	}},
	{cmd: cmdNormalOn, delay: 10 * time.Millisecond},
	{cmd: cmdDisplayOn, delay: 120 * time.Millisecond},
}

// Bus is the half of spi.Conn the driver uses.
type Bus interface {
	Tx(w, r []byte) error
}

// Pin is the half of gpio.PinOut the driver uses.
type Pin interface {
	Out(l gpio.Level) error
}

type Opts struct {
	// Sleep replaces time.Sleep, mostly for tests.
	Sleep func(time.Duration)
	// Closer releases the bus on Halt. May be nil.
	Closer io.Closer
}

// Dev is an open panel. It is not safe for concurrent use.
type Dev struct {
	bus    Bus
	dc     Pin
	rst    Pin
	bl     Pin
	closer io.Closer
	sleep  func(time.Duration)
	frame  *image.RGBA
	buf    []byte
	halted bool
}

// New wraps already opened periph connections. Call Init before drawing.
func New(bus Bus, dc, rst, bl Pin, opts *Opts) *Dev {
	d := &Dev{
		bus:   bus,
		dc:    dc,
		rst:   rst,
		bl:    bl,
		sleep: time.Sleep,
		buf:   make([]byte, Width*Height*2),
	}
	if opts != nil {
		if opts.Sleep != nil {
			d.sleep = opts.Sleep
		}
		d.closer = opts.Closer
	}
	return d
}

// Open initialises the periph host drivers, connects SPI0.0 at 4 MHz in
// mode 0 and claims the DC, reset and backlight lines. The returned panel
// is already initialised.
func Open() (*Dev, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	port, err := spireg.Open(DefaultPort)
	if err != nil {
		return nil, fmt.Errorf("failed to open spi port %s: %w", DefaultPort, err)
	}

	conn, err := port.Connect(DefaultFrequency, spi.Mode0, 8)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to connect spi port: %w", err)
	}

	pins := make([]Pin, 0, 3)
	for _, name := range []string{DefaultDCPin, DefaultResetPin, DefaultBLPin} {
		p := gpioreg.ByName(name)
		if p == nil {
			_ = port.Close()
			return nil, fmt.Errorf("%w: %s", ErrPinMissing, name)
		}
		pins = append(pins, p)
	}

	d := New(conn, pins[0], pins[1], pins[2], &Opts{Closer: port})
	if err := d.Init(); err != nil {
		_ = port.Close()
		return nil, err
	}

	log.Info().Str("port", DefaultPort).Msg("st7735 panel initialized")
	return d, nil
}

// Bounds is the drawable area.
func (*Dev) Bounds() image.Rectangle {
	return image.Rect(0, 0, Width, Height)
}

// Init resets the controller, sends the init table and turns the backlight
// on.
func (d *Dev) Init() error {
	if err := d.reset(); err != nil {
		return err
	}
	for _, s := range initSequence {
		if err := d.sendCommand(s.cmd, s.data...); err != nil {
			return fmt.Errorf("failed to send init command 0x%02X: %w", s.cmd, err)
		}
		if s.delay > 0 {
			d.sleep(s.delay)
		}
	}
	if err := d.bl.Out(gpio.High); err != nil {
		return fmt.Errorf("failed to enable backlight: %w", err)
	}
	d.halted = false
	return nil
}

func (d *Dev) reset() error {
	for _, level := range []gpio.Level{gpio.High, gpio.Low, gpio.High} {
		if err := d.rst.Out(level); err != nil {
			return fmt.Errorf("failed to drive reset line: %w", err)
		}
		d.sleep(resetDelay)
	}
	return nil
}

// sendCommand writes cmd with DC low, then any parameters with DC high.
func (d *Dev) sendCommand(cmd byte, data ...byte) error {
	if err := d.dc.Out(gpio.Low); err != nil {
		return err
	}
	if err := d.bus.Tx([]byte{cmd}, nil); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return d.sendData(data)
}

func (d *Dev) sendData(data []byte) error {
	if err := d.dc.Out(gpio.High); err != nil {
		return err
	}
	for start := 0; start < len(data); start += MaxTransfer {
		end := min(start+MaxTransfer, len(data))
		if err := d.bus.Tx(data[start:end], nil); err != nil {
			return err
		}
	}
	return nil
}

// DisplayImage pushes img to the panel. Images of another size are scaled
// to fit.
func (d *Dev) DisplayImage(img image.Image) error {
	if d.halted {
		return errors.New("panel is halted")
	}

	src := img
	if img.Bounds().Dx() != Width || img.Bounds().Dy() != Height {
		if d.frame == nil {
			d.frame = image.NewRGBA(d.Bounds())
		}
		xdraw.ApproxBiLinear.Scale(d.frame, d.frame.Bounds(), img, img.Bounds(), xdraw.Src, nil)
		src = d.frame
	}

	PackRGB565(d.buf, src)

	if err := d.sendCommand(cmdMemoryWrite); err != nil {
		return fmt.Errorf("failed to start memory write: %w", err)
	}
	if err := d.sendData(d.buf); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}

// Halt turns the backlight off and releases the bus. It is safe to call
// more than once.
func (d *Dev) Halt() error {
	if d.halted {
		return nil
	}
	d.halted = true

	var errs []error
	if err := d.bl.Out(gpio.Low); err != nil {
		errs = append(errs, fmt.Errorf("failed to disable backlight: %w", err))
	}
	if d.closer != nil {
		if err := d.closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close spi port: %w", err))
		}
	}
	return errors.Join(errs...)
}

// RGB565 packs an 8-bit colour into the panel's big-endian 16-bit format.
func RGB565(c color.Color) (hi, lo byte) {
	r, g, b, _ := c.RGBA()
	v := uint16((r>>8)&0xF8)<<8 | uint16((g>>8)&0xFC)<<3 | uint16(b>>8)>>3
	return byte(v >> 8), byte(v)
}

// PackRGB565 fills dst row by row from the top-left Width x Height pixels of
// src. dst must hold Width*Height*2 bytes.
func PackRGB565(dst []byte, src image.Image) {
	b := src.Bounds()
	i := 0
	if rgba, ok := src.(*image.RGBA); ok {
		for y := 0; y < Height; y++ {
			row := rgba.Pix[rgba.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := 0; x < Width; x++ {
				p := row[x*4 : x*4+3]
				v := uint16(p[0]&0xF8)<<8 | uint16(p[1]&0xFC)<<3 | uint16(p[2])>>3
				dst[i] = byte(v >> 8)
				dst[i+1] = byte(v)
				i += 2
			}
		}
		return
	}
	for y := b.Min.Y; y < b.Min.Y+Height; y++ {
		for x := b.Min.X; x < b.Min.X+Width; x++ {
			dst[i], dst[i+1] = RGB565(src.At(x, y))
			i += 2
		}
	}
}
