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

// Package config loads the agent's flat JSON settings file. The file is read
// once at startup; an Instance never changes after NewConfig returns.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	CfgEnv  = "WARTOOTH_CFG"
	CfgFile = "wigle_config.json"

	FirmwareBootDir = "/boot/firmware"
	LegacyBootDir   = "/boot"

	// Placeholders written to a fresh config file. A credential equal to
	// its placeholder counts as not configured.
	PlaceholderAPIName  = "YOUR_WIGLE_API_NAME"
	PlaceholderAPIToken = "YOUR_WIGLE_API_TOKEN"

	DefaultScanInterval   = 10
	DefaultUploadInterval = 300
	DefaultCSVDir         = "/home/pi/wigle_scans"
	DefaultUploadURL      = "https://api.wigle.net/api/v2/file/upload"
	DefaultAdapter        = "hci0"
)

// ErrConfigMissing is returned when no config file exists at the path.
var ErrConfigMissing = errors.New("config file missing")

type Values struct {
	APIName        string `json:"api_name"`
	APIToken       string `json:"api_token"`
	CSVDir         string `json:"csv_dir" validate:"required"`
	UploadURL      string `json:"upload_url" validate:"required,url"`
	Adapter        string `json:"adapter" validate:"required"`
	MetricsFile    string `json:"metrics_file,omitempty"`
	ScanInterval   int    `json:"scan_interval" validate:"gt=0"`
	UploadInterval int    `json:"upload_interval" validate:"gt=0"`
	UseSudo        bool   `json:"use_sudo"`
	DisplayEnabled bool   `json:"display_enabled"`
	DebugLogging   bool   `json:"debug_logging"`
}

var BaseDefaults = Values{
	APIName:        PlaceholderAPIName,
	APIToken:       PlaceholderAPIToken,
	ScanInterval:   DefaultScanInterval,
	UploadInterval: DefaultUploadInterval,
	CSVDir:         DefaultCSVDir,
	UploadURL:      DefaultUploadURL,
	Adapter:        DefaultAdapter,
	UseSudo:        true,
	DisplayEnabled: true,
}

type Instance struct {
	cfgPath string
	vals    Values
	created bool
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ResolvePath picks the config file location: $WARTOOTH_CFG, an existing
// file on the firmware boot partition, the firmware partition itself when
// mounted, and finally the legacy /boot partition.
func ResolvePath(afs afero.Fs) string {
	if p := os.Getenv(CfgEnv); p != "" {
		return p
	}

	firmwarePath := filepath.Join(FirmwareBootDir, CfgFile)
	if ok, _ := afero.Exists(afs, firmwarePath); ok {
		return firmwarePath
	}
	if ok, _ := afero.DirExists(afs, FirmwareBootDir); ok {
		return firmwarePath
	}

	return filepath.Join(LegacyBootDir, CfgFile)
}

// NewConfig reads the config file at cfgPath on top of defaults. A missing
// file is recovered from by writing the defaults to disk and continuing.
//
//nolint:gocritic // defaults copied on purpose
func NewConfig(afs afero.Fs, cfgPath string, defaults Values) (*Instance, error) {
	cfg := &Instance{
		cfgPath: cfgPath,
		vals:    defaults,
	}

	vals, err := read(afs, cfgPath, defaults)
	switch {
	case errors.Is(err, ErrConfigMissing):
		log.Warn().Err(err).Str("path", cfgPath).Msg("saving new default config to disk")
		if err := save(afs, cfgPath, defaults); err != nil {
			return nil, err
		}
		cfg.created = true
	case err != nil:
		return nil, err
	default:
		cfg.vals = vals
	}

	if err := validate.Struct(cfg.vals); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgPath, err)
	}

	return cfg, nil
}

//nolint:gocritic // defaults copied on purpose
func read(afs afero.Fs, cfgPath string, defaults Values) (Values, error) {
	data, err := afero.ReadFile(afs, cfgPath)
	if errors.Is(err, fs.ErrNotExist) {
		return Values{}, fmt.Errorf("%w: %s", ErrConfigMissing, cfgPath)
	} else if err != nil {
		return Values{}, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults so keys absent from the file keep their default.
	vals := defaults
	if err := json.Unmarshal(data, &vals); err != nil {
		return Values{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return vals, nil
}

//nolint:gocritic // values copied on purpose
func save(afs afero.Fs, cfgPath string, vals Values) error {
	if err := afs.MkdirAll(filepath.Dir(cfgPath), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(&vals, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := afero.WriteFile(afs, cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Path is where the config was loaded from, or written to.
func (c *Instance) Path() string {
	return c.cfgPath
}

// Created reports whether the file was missing and defaults were written.
func (c *Instance) Created() bool {
	return c.created
}

func (c *Instance) APIName() string {
	return c.vals.APIName
}

func (c *Instance) APIToken() string {
	return c.vals.APIToken
}

// APIConfigured reports whether both upload credentials have been set to
// something other than empty or the placeholder.
func (c *Instance) APIConfigured() bool {
	return c.vals.APIName != "" && c.vals.APIName != PlaceholderAPIName &&
		c.vals.APIToken != "" && c.vals.APIToken != PlaceholderAPIToken
}

func (c *Instance) ScanInterval() time.Duration {
	return time.Duration(c.vals.ScanInterval) * time.Second
}

func (c *Instance) UploadInterval() time.Duration {
	return time.Duration(c.vals.UploadInterval) * time.Second
}

func (c *Instance) CSVDir() string {
	return c.vals.CSVDir
}

func (c *Instance) UploadURL() string {
	return c.vals.UploadURL
}

func (c *Instance) Adapter() string {
	return c.vals.Adapter
}

func (c *Instance) UseSudo() bool {
	return c.vals.UseSudo
}

func (c *Instance) DisplayEnabled() bool {
	return c.vals.DisplayEnabled
}

func (c *Instance) DebugLogging() bool {
	return c.vals.DebugLogging
}

// MetricsFile is the Prometheus textfile path, empty when disabled.
func (c *Instance) MetricsFile() string {
	return c.vals.MetricsFile
}
