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

// Package uploader sends finished session logs to the WiGLE file upload
// API.
package uploader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/wartooth/wartooth/pkg/helpers"
	"github.com/wartooth/wartooth/pkg/sessionlog"
	"github.com/wartooth/wartooth/pkg/shared/httpclient"
)

const (
	DefaultTimeout = 30 * time.Second

	FormField   = "file"
	ContentType = "text/csv"

	// DiagnosticLength is how much of a transport error fits the display.
	DiagnosticLength = 15
)

var (
	// ErrNoAPIKeys means the credentials still hold their placeholders.
	ErrNoAPIKeys = errors.New("no API keys")
	// ErrNoData means there is no log file or it has no sightings yet.
	ErrNoData = errors.New("no data")
)

// IsNotReady reports whether err is a precondition failure, meaning no
// network request was made.
func IsNotReady(err error) bool {
	return errors.Is(err, ErrNoAPIKeys) || errors.Is(err, ErrNoData)
}

// UploadError is a failed request: either a non-200 response or a
// transport failure.
type UploadError struct {
	Err        error
	StatusCode int
}

func (e *UploadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upload failed: status %d", e.StatusCode)
	}
	return "upload failed: " + e.Err.Error()
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// Message is the short form shown on the status display.
func (e *UploadError) Message() string {
	if e.StatusCode != 0 {
		return "Error " + strconv.Itoa(e.StatusCode)
	}
	return "Error: " + helpers.Truncate(e.Err.Error(), DiagnosticLength)
}

// Settings is the part of the config the uploader reads.
type Settings interface {
	APIConfigured() bool
	APIName() string
	APIToken() string
	UploadURL() string
}

type Options struct {
	Fs       afero.Fs
	Settings Settings
	Timeout  time.Duration
}

type Uploader struct {
	fs       afero.Fs
	settings Settings
	client   *httpclient.Client
	url      string
	timeout  time.Duration
}

func New(opts Options) *Uploader {
	u := &Uploader{
		fs:       opts.Fs,
		settings: opts.Settings,
		url:      opts.Settings.UploadURL(),
		timeout:  opts.Timeout,
	}
	if u.fs == nil {
		u.fs = afero.NewOsFs()
	}
	if u.timeout <= 0 {
		u.timeout = DefaultTimeout
	}
	u.client = httpclient.NewClientWithTimeout(httpclient.BasicAuth{
		Username: opts.Settings.APIName(),
		Password: opts.Settings.APIToken(),
	}, u.timeout)
	return u
}

// Upload posts the log file. It returns true only for an HTTP 200, after
// which the caller must rotate the session log. Preconditions are checked
// before any network activity and fail with ErrNoAPIKeys or ErrNoData.
// Every other failure is an *UploadError and the file is left for the next
// attempt.
func (u *Uploader) Upload(ctx context.Context, sl sessionlog.SessionLog) (bool, error) {
	if !u.settings.APIConfigured() {
		return false, ErrNoAPIKeys
	}
	if err := u.checkData(sl); err != nil {
		return false, err
	}

	body, contentType, err := u.buildBody(sl.Path)
	if err != nil {
		return false, &UploadError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.url, body)
	if err != nil {
		return false, &UploadError{Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	log.Debug().Str("path", sl.Path).Int("rows", sl.RowCount).Msg("uploading session log")

	resp, err := u.client.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("Upload error")
		return false, &UploadError{Err: err}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		log.Error().Int("status", resp.StatusCode).Msg("Upload failed")
		return false, &UploadError{StatusCode: resp.StatusCode}
	}

	log.Info().Str("path", sl.Path).Int("rows", sl.RowCount).Msg("Upload successful")
	return true, nil
}

// checkData requires an existing, non-empty file holding at least one
// sighting. A log with only its two header rows is not worth a request:
// uploading it would rotate to a new file and leave WiGLE with an empty
// capture, so it waits until a scan adds rows.
func (u *Uploader) checkData(sl sessionlog.SessionLog) error {
	if sl.Path == "" {
		return ErrNoData
	}
	info, err := u.fs.Stat(sl.Path)
	if err != nil || info.Size() == 0 {
		return ErrNoData
	}
	if sl.RowCount == 0 {
		return ErrNoData
	}
	return nil
}

func (u *Uploader) buildBody(path string) (io.Reader, string, error) {
	data, err := afero.ReadFile(u.fs, path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read log file: %w", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`,
		FormField, filepath.Base(path)))
	header.Set("Content-Type", ContentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("failed to write form part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish form: %w", err)
	}

	return &buf, mw.FormDataContentType(), nil
}
