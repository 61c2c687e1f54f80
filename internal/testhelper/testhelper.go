// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package testhelper provides shared helpers for the package tests.
package testhelper

import (
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
)

const (
	// TestOnlineAPIURL is a reachable endpoint used by the integration tests
	TestOnlineAPIURL = "https://api.openweathermap.org/data/2.5/forecast/daily"

	integrationEnv = "PERFORM_INTEGRATION_TESTS"
)

// MockRoundTripper is a http.RoundTripper that hands every request to Fn
type MockRoundTripper struct {
	Fn func(req *http.Request) (*http.Response, error)
}

// RoundTrip implements the http.RoundTripper interface
func (m MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.Fn(req)
}

// PerformIntegrationTests skips the calling test unless integration tests are enabled via env
func PerformIntegrationTests(t *testing.T) {
	t.Helper()
	if !strings.EqualFold(os.Getenv(integrationEnv), "true") {
		t.Skipf("skipping integration test, set %s=true to enable", integrationEnv)
	}
}

// FileResponse returns a round trip function that answers every request with the given status
// code and the content of the given file
func FileResponse(t *testing.T, status int, file string) func(req *http.Request) (*http.Response, error) {
	t.Helper()
	return func(req *http.Request) (*http.Response, error) {
		data, err := os.Open(file)
		if err != nil {
			t.Errorf("failed to open response file: %s", err)
			return nil, err
		}
		return &http.Response{
			StatusCode: status,
			Body:       data,
			Header:     make(http.Header),
			Request:    req,
		}, nil
	}
}

// StringResponse returns a round trip function that answers every request with the given status
// code and body
func StringResponse(status int, body string) func(req *http.Request) (*http.Response, error) {
	return func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     make(http.Header),
			Request:    req,
		}, nil
	}
}
