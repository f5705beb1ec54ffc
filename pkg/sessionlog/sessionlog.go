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

// Package sessionlog writes discovered devices to WiGLE CSV files. One file
// is active at a time; it is replaced only after a successful upload.
package sessionlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	FilePrefix = "wartooth_"
	FileExt    = ".csv"

	fileTimeLayout  = "20060102_150405"
	firstSeenLayout = "2006-01-02 15:04:05"

	// Fields the agent has no way to measure.
	authModeBT     = "[BT]"
	typeBT         = "BT"
	zeroInt        = "0"
	zeroCoordinate = "0.0"

	// maxNameCollisions bounds the _N suffix search when several logs are
	// opened within the same second.
	maxNameCollisions = 100
)

// MetadataRow is the first line of every log: format version followed by
// the survey device's identity.
var MetadataRow = []string{
	"WigleWifi-1.4",
	"appRelease=2.0",
	"model=Wartooth",
	"release=RaspberryPiZero2W",
	"device=btscanner",
	"display=waveshare144",
	"board=bcm2710",
	"brand=wartooth",
}

// DeviceRecord is one sighting of one device during one scan.
type DeviceRecord struct {
	FirstSeen time.Time
	MAC       string
	Name      string
}

// SessionLog describes the active log file.
type SessionLog struct {
	Path          string
	RowCount      int
	HeaderWritten bool
}

// row is the on-disk layout. The csv tags double as the column header row.
type row struct {
	MAC              string `csv:"MAC"`
	SSID             string `csv:"SSID"`
	AuthMode         string `csv:"AuthMode"`
	FirstSeen        string `csv:"FirstSeen"`
	Channel          string `csv:"Channel"`
	RSSI             string `csv:"RSSI"`
	CurrentLatitude  string `csv:"CurrentLatitude"`
	CurrentLongitude string `csv:"CurrentLongitude"`
	AltitudeMeters   string `csv:"AltitudeMeters"`
	AccuracyMeters   string `csv:"AccuracyMeters"`
	Type             string `csv:"Type"`
}

func newRow(rec DeviceRecord) row {
	return row{
		MAC:              rec.MAC,
		SSID:             rec.Name,
		AuthMode:         authModeBT,
		FirstSeen:        rec.FirstSeen.Format(firstSeenLayout),
		Channel:          zeroInt,
		RSSI:             zeroInt,
		CurrentLatitude:  zeroCoordinate,
		CurrentLongitude: zeroCoordinate,
		AltitudeMeters:   zeroCoordinate,
		AccuracyMeters:   zeroCoordinate,
		Type:             typeBT,
	}
}

// Writer owns the active session log. It is not safe for concurrent use;
// the orchestrator goroutine is its only caller.
type Writer struct {
	fs      afero.Fs
	clock   clockwork.Clock
	file    afero.File
	dir     string
	current SessionLog
}

func NewWriter(afs afero.Fs, clock clockwork.Clock, dir string) *Writer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Writer{
		fs:    afs,
		clock: clock,
		dir:   dir,
	}
}

// Open creates the log directory if needed, starts a new timestamped file
// and writes both header rows. Any previously open file is closed first.
func (w *Writer) Open() (SessionLog, error) {
	if w.file != nil {
		if err := w.closeFile(); err != nil {
			return SessionLog{}, err
		}
	}

	if err := w.fs.MkdirAll(w.dir, 0o750); err != nil {
		return SessionLog{}, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, path, err := w.createFile()
	if err != nil {
		return SessionLog{}, err
	}

	w.file = file
	w.current = SessionLog{Path: path}

	if err := w.writeHeader(); err != nil {
		_ = w.closeFile()
		return SessionLog{}, err
	}
	w.current.HeaderWritten = true

	log.Info().Str("path", path).Msg("CSV created")
	return w.current, nil
}

// createFile opens a new file exclusively so an earlier log that happens to
// share the same second is never truncated.
func (w *Writer) createFile() (file afero.File, path string, err error) {
	base := FilePrefix + w.clock.Now().Format(fileTimeLayout)
	for i := 0; i < maxNameCollisions; i++ {
		name := base + FileExt
		if i > 0 {
			name = fmt.Sprintf("%s_%d%s", base, i, FileExt)
		}
		path = filepath.Join(w.dir, name)

		file, err = w.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return file, path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("failed to create log file: %w", err)
		}
	}
	return nil, "", fmt.Errorf("failed to create log file: too many logs named %s", base)
}

func (w *Writer) writeHeader() error {
	meta := csv.NewWriter(w.file)
	if err := meta.Write(MetadataRow); err != nil {
		return fmt.Errorf("failed to write metadata row: %w", err)
	}
	meta.Flush()
	if err := meta.Error(); err != nil {
		return fmt.Errorf("failed to write metadata row: %w", err)
	}

	// An empty slice marshals to just the column header row.
	if err := gocsv.Marshal([]row{}, w.file); err != nil {
		return fmt.Errorf("failed to write column header row: %w", err)
	}

	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync log file: %w", err)
	}
	return nil
}

// AppendRows writes one row per record and syncs the file so the batch
// survives a power cut. Duplicates are written as-is: every sighting is a
// row. If no file is open (a previous rotation failed), a new one is opened
// first.
func (w *Writer) AppendRows(records []DeviceRecord) error {
	if len(records) == 0 {
		return nil
	}

	if w.file == nil {
		if _, err := w.Open(); err != nil {
			return err
		}
	}

	rows := make([]row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, newRow(rec))
	}

	if err := gocsv.MarshalWithoutHeaders(rows, w.file); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync log file: %w", err)
	}

	w.current.RowCount += len(rows)
	return nil
}

// Rotate closes the active file and opens a fresh one. The old file stays
// on disk untouched.
func (w *Writer) Rotate() (SessionLog, error) {
	prev := w.current.Path
	err := w.closeFile()
	// The previous log has been handed off; it must not be offered again
	// even when closing it failed.
	w.current = SessionLog{}
	if err != nil {
		return SessionLog{}, err
	}

	next, err := w.Open()
	if err != nil {
		return SessionLog{}, fmt.Errorf("failed to rotate session log: %w", err)
	}

	log.Debug().Str("previous", prev).Str("current", next.Path).Msg("session log rotated")
	return next, nil
}

// Current describes the active log. Path is empty before the first Open.
func (w *Writer) Current() SessionLog {
	return w.current
}

// Close flushes and releases the active file.
func (w *Writer) Close() error {
	return w.closeFile()
}

func (w *Writer) closeFile() error {
	if w.file == nil {
		return nil
	}
	file := w.file
	w.file = nil

	if err := file.Sync(); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to sync log file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}
