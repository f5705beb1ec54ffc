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

// Package httpclient provides the HTTP client used for uploads.
package httpclient

import (
	"fmt"
	"net"
	"net/http"
	"time"
)

// DefaultTimeout bounds a whole request including the response body.
const DefaultTimeout = 30 * time.Second

// BasicAuth holds credentials sent with every request.
type BasicAuth struct {
	Username string
	Password string
}

// AuthTransport adds basic authentication to outgoing requests.
type AuthTransport struct {
	Base http.RoundTripper
	Auth BasicAuth
}

// RoundTrip implements http.RoundTripper. The request is cloned before the
// header is set, as RoundTrip must not modify its argument.
func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	if t.Auth.Username != "" {
		req = req.Clone(req.Context())
		req.SetBasicAuth(t.Auth.Username, t.Auth.Password)
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform HTTP round trip: %w", err)
	}
	return resp, nil
}

// DefaultTransport keeps at most one idle connection to the upload host.
var DefaultTransport = &http.Transport{
	Proxy: http.ProxyFromEnvironment,
	DialContext: (&net.Dialer{
		Timeout:   15 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	ResponseHeaderTimeout: DefaultTimeout,
	TLSHandshakeTimeout:   10 * time.Second,
	MaxIdleConns:          2,
	MaxIdleConnsPerHost:   1,
	IdleConnTimeout:       90 * time.Second,
}

// Client is an http.Client with basic authentication attached.
type Client struct {
	*http.Client
}

// NewClient creates a client using DefaultTimeout.
func NewClient(auth BasicAuth) *Client {
	return NewClientWithTimeout(auth, DefaultTimeout)
}

// NewClientWithTimeout creates a client with a custom overall timeout.
func NewClientWithTimeout(auth BasicAuth, timeout time.Duration) *Client {
	return &Client{
		Client: &http.Client{
			Transport: &AuthTransport{
				Base: DefaultTransport,
				Auth: auth,
			},
			Timeout: timeout,
		},
	}
}
