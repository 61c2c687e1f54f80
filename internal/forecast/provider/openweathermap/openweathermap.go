// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package openweathermap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/wneessen/daily-forecast/internal/forecast"
	fhttp "github.com/wneessen/daily-forecast/internal/http"
	"github.com/wneessen/daily-forecast/internal/logger"
)

const (
	name = "openweathermap"

	// DefaultBaseURL is the request prefix the encoded location is appended to
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5/forecast/daily?q="
	// DefaultDays is the number of forecast days requested from the API
	DefaultDays = 16
	APITimeout  = time.Second * 10
)

// Options configures the OpenWeatherMap client
type Options struct {
	BaseURL           string
	APIKey            string
	Days              uint
	RequestsPerMinute float64
	Format            forecast.Format
}

// OpenWeatherMap fetches daily forecasts from the OpenWeatherMap API
type OpenWeatherMap struct {
	opts    Options
	log     *logger.Logger
	http    *fhttp.Client
	limiter *rate.Limiter
}

func New(client *fhttp.Client, log *logger.Logger, opts Options) (*OpenWeatherMap, error) {
	if client == nil {
		return nil, fmt.Errorf("http client is required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Days == 0 {
		opts.Days = DefaultDays
	}
	if opts.Format.Units == "" {
		opts.Format.Units = forecast.UnitsImperial
	}

	limit := rate.Inf
	if opts.RequestsPerMinute > 0 {
		limit = rate.Limit(opts.RequestsPerMinute / 60)
	}

	return &OpenWeatherMap{
		opts:    opts,
		log:     log,
		http:    client,
		limiter: rate.NewLimiter(limit, 1),
	}, nil
}

func (o *OpenWeatherMap) Name() string {
	return name
}

// BuildRequestURL concatenates the base URL, the percent-encoded location, the units suffix and
// the API key suffix. Any failure is reported as forecast.ErrInvalidURL.
func (o *OpenWeatherMap) BuildRequestURL(query string) (*url.URL, error) {
	if !utf8.ValidString(query) {
		return nil, fmt.Errorf("%w: location is not valid UTF-8", forecast.ErrInvalidURL)
	}

	raw := o.opts.BaseURL + url.QueryEscape(query) + o.unitsSuffix() + o.apiKeySuffix()
	reqURL, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", forecast.ErrInvalidURL, err)
	}
	if reqURL.Scheme != "http" && reqURL.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", forecast.ErrInvalidURL, reqURL.Scheme)
	}
	if reqURL.Host == "" {
		return nil, fmt.Errorf("%w: missing host", forecast.ErrInvalidURL)
	}

	return reqURL, nil
}

// FetchForecast performs the blocking GET request for the given URL and parses the response. It
// must not be called from the goroutine that drives the presentation.
func (o *OpenWeatherMap) FetchForecast(ctx context.Context, u *url.URL) (forecast.Collection, error) {
	if u == nil {
		return nil, forecast.ErrInvalidURL
	}
	if err := o.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait canceled: %w", forecast.ErrConnection, err)
	}

	code, body, err := o.http.GetText(ctx, u.String(), APITimeout)
	switch {
	case errors.Is(err, fhttp.ErrReadBody):
		return nil, fmt.Errorf("%w: %w", forecast.ErrRead, err)
	case err != nil:
		return nil, fmt.Errorf("%w: %w", forecast.ErrConnection, err)
	case code != http.StatusOK:
		return nil, &forecast.StatusError{StatusCode: code}
	}
	o.log.Debug("forecast data received", slog.Int("bytes", len(body)))

	records, err := forecast.Parse([]byte(body), o.opts.Format)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (o *OpenWeatherMap) unitsSuffix() string {
	return "&units=" + string(o.opts.Format.Units) + "&cnt=" + strconv.FormatUint(uint64(o.opts.Days), 10)
}

func (o *OpenWeatherMap) apiKeySuffix() string {
	return "&APPID=" + o.opts.APIKey
}
