// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package http

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"
	"strings"
	"time"

	"github.com/wneessen/daily-forecast/internal/logger"
)

const (
	// DefaultTimeout is the default timeout value for the HTTPClient
	DefaultTimeout = time.Second * 10

	// maxBodySize limits the amount of data read from a single response
	maxBodySize = 4 << 20
)

var (
	// version is the version of the application (will be set at build time)
	version = "dev"
	// UserAgent is the User-Agent that the HTTP client sends with API requests
	UserAgent = fmt.Sprintf("Mozilla/5.0 (%s; %s) daily-forecast/%s (+https://github.com/wneessen/daily-forecast/)",
		runtime.GOOS,
		runtime.GOARCH,
		version,
	)

	// ErrRequestFailed is returned when the request could not be performed at all
	ErrRequestFailed = errors.New("failed to perform HTTP request")
	// ErrReadBody is returned when the response body could not be read
	ErrReadBody = errors.New("failed to read HTTP response body")
	// ErrBodyTooLarge is returned, wrapped in ErrReadBody, when a body exceeds maxBodySize
	ErrBodyTooLarge = fmt.Errorf("response body exceeds %d bytes", maxBodySize)

	lineBreaks = strings.NewReplacer("\r", "", "\n", "")
)

// Client is a type wrapper for the Go stdlib http.Client and the Logger
type Client struct {
	*http.Client
	logger *logger.Logger
}

// New returns a new HTTP client
func New(logger *logger.Logger) *Client {
	tlsConfig := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}
	httpTransport := &http.Transport{TLSClientConfig: tlsConfig}
	httpClient := &http.Client{
		Timeout:   DefaultTimeout,
		Transport: httpTransport,
	}
	return &Client{httpClient, logger}
}

// GetText performs a HTTP GET request for the given URL and returns the status code. If the server
// responds with 200 OK, the body is read line by line and the lines are concatenated without any
// separator. For every other status code the body is not read.
func (h *Client) GetText(ctx context.Context, endpoint string, timeout time.Duration) (int, string, error) {
	var text string
	code, err := h.get(ctx, endpoint, timeout, func(body io.Reader) error {
		var readErr error
		text, readErr = joinLines(body)
		return readErr
	})
	return code, text, err
}

// GetBytes performs a HTTP GET request for the given URL and returns the status code and, for
// 200 OK responses, the raw response body.
func (h *Client) GetBytes(ctx context.Context, endpoint string, timeout time.Duration) (int, []byte, error) {
	var data []byte
	code, err := h.get(ctx, endpoint, timeout, func(body io.Reader) error {
		var readErr error
		data, readErr = io.ReadAll(limitBody(body))
		return readErr
	})
	return code, data, err
}

// get executes the request and hands the body to read if the response status is OK. The response
// body is closed on every return path.
func (h *Client) get(ctx context.Context, endpoint string, timeout time.Duration, read func(io.Reader) error) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reqURL, err := url.Parse(endpoint)
	if err != nil {
		return 0, fmt.Errorf("failed to parse URL: %w", err)
	}

	// Prepare HTTP request
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed create new HTTP request with context: %w", err)
	}
	request.Header.Set("User-Agent", UserAgent)

	// Execute HTTP request
	response, err := h.Do(request)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	if response == nil {
		h.logger.Warn("no HTTP response to release")
		return 0, fmt.Errorf("%w: nil response received", ErrRequestFailed)
	}
	defer func(body io.ReadCloser) {
		if body == nil {
			return
		}
		if err := body.Close(); err != nil {
			h.logger.Error("failed to close HTTP request body", logger.Err(err))
		}
	}(response.Body)

	if response.StatusCode != http.StatusOK {
		return response.StatusCode, nil
	}
	if response.Body == nil {
		return response.StatusCode, fmt.Errorf("%w: empty body", ErrReadBody)
	}
	if err = read(response.Body); err != nil {
		return response.StatusCode, fmt.Errorf("%w: %w", ErrReadBody, err)
	}

	return response.StatusCode, nil
}

// joinLines reads r line by line and concatenates the lines without a separator. Both LF and
// CR are treated as line terminators and are dropped.
func joinLines(r io.Reader) (string, error) {
	reader := bufio.NewReader(limitBody(r))
	builder := strings.Builder{}
	for {
		line, err := reader.ReadString('\n')
		builder.WriteString(lineBreaks.Replace(line))
		if errors.Is(err, io.EOF) {
			return builder.String(), nil
		}
		if err != nil {
			return builder.String(), err
		}
	}
}

// sizeLimitReader fails with ErrBodyTooLarge instead of silently truncating the body.
type sizeLimitReader struct {
	r    io.Reader
	left int64
}

func limitBody(r io.Reader) io.Reader {
	return &sizeLimitReader{r: io.LimitReader(r, maxBodySize+1), left: maxBodySize}
}

func (l *sizeLimitReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.left -= int64(n)
	if l.left < 0 {
		return n, ErrBodyTooLarge
	}
	return n, err
}
