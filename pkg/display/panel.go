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
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/wartooth/wartooth/pkg/display/st7735"
	"github.com/wartooth/wartooth/pkg/service/state"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	Width  = st7735.Width
	Height = st7735.Height
	Margin = 5

	Title = "Wartooth Scanner"

	titleY      = 5
	topRuleY    = 25
	foundY      = 33
	scansY      = 48
	uploadY     = 63
	bottomRuleY = 83
	messageY    = 91
	lineSpacing = 12

	uploadTimeLayout = "15:04"
)

var (
	ColorBackground = color.RGBA{A: 255}
	ColorTitle      = color.RGBA{G: 255, A: 255}
	ColorRule       = color.RGBA{G: 150, A: 255}
	ColorCounter    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	ColorUpload     = color.RGBA{R: 255, G: 255, A: 255}
	ColorMessage    = color.RGBA{G: 200, B: 255, A: 255}
)

// PanelRenderer draws into a fixed frame buffer and pushes it to the panel.
// It is only used from the orchestrator goroutine.
type PanelRenderer struct {
	panel Panel
	frame *image.RGBA
	text  font.Face
	title font.Face
}

func NewPanelRenderer(panel Panel) (*PanelRenderer, error) {
	if panel == nil {
		return nil, fmt.Errorf("%w: no panel", ErrDisplayUnavailable)
	}
	return &PanelRenderer{
		panel: panel,
		frame: image.NewRGBA(image.Rect(0, 0, Width, Height)),
		text:  loadFace(goregular.TTF, 10),
		title: loadFace(gobold.TTF, 14),
	}, nil
}

func loadFace(ttf []byte, size float64) font.Face {
	f, err := opentype.Parse(ttf)
	if err == nil {
		var face font.Face
		face, err = opentype.NewFace(f, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err == nil {
			return face
		}
	}
	log.Warn().Err(err).Msg("failed to load font, using fallback")
	return basicfont.Face7x13
}

func (*PanelRenderer) Available() bool { return true }

// Frame is the last drawn frame.
func (r *PanelRenderer) Frame() *image.RGBA {
	return r.frame
}

// Render redraws the whole frame from st and sends it to the panel.
func (r *PanelRenderer) Render(st state.Status) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Msg("Display error")
		}
	}()

	r.Draw(st)
	if err := r.panel.DisplayImage(r.frame); err != nil {
		log.Error().Err(err).Msg("Display error")
	}
}

// Draw paints st into the frame buffer without touching the panel.
func (r *PanelRenderer) Draw(st state.Status) {
	draw.Draw(r.frame, r.frame.Bounds(), image.NewUniform(ColorBackground), image.Point{}, draw.Src)

	r.drawText(r.title, Title, titleY, ColorTitle)
	r.drawRule(topRuleY)
	r.drawText(r.text, "Found: "+strconv.Itoa(st.DevicesFound), foundY, ColorCounter)
	r.drawText(r.text, "Scans: "+strconv.Itoa(st.TotalScans), scansY, ColorCounter)
	r.drawText(r.text, UploadLine(st), uploadY, ColorUpload)
	r.drawRule(bottomRuleY)

	y := messageY
	for _, line := range WrapText(st.Message, WrapLimit) {
		if y >= Height {
			break
		}
		r.drawText(r.text, line, y, ColorMessage)
		y += lineSpacing
	}
}

// UploadLine is "Upload: HH:MM" after the first successful upload and
// "Upload: pending" before it.
func UploadLine(st state.Status) string {
	if !st.Uploaded() {
		return "Upload: pending"
	}
	return "Upload: " + st.LastUpload.Format(uploadTimeLayout)
}

// drawText places s with the top of its ascent at y.
func (r *PanelRenderer) drawText(face font.Face, s string, y int, c color.Color) {
	d := font.Drawer{
		Dst:  r.frame,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(Margin, y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)
}

func (r *PanelRenderer) drawRule(y int) {
	for x := Margin; x <= Width-Margin; x++ {
		r.frame.SetRGBA(x, y, ColorRule)
	}
}

// Close turns the backlight off and releases the bus.
func (r *PanelRenderer) Close() error {
	if err := r.panel.Halt(); err != nil {
		return fmt.Errorf("failed to halt panel: %w", err)
	}
	return nil
}
