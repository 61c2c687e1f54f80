// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package pipeline runs forecast fetches off the event loop. Each started fetch delivers
// exactly one Result.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/wneessen/daily-forecast/internal/forecast"
	"github.com/wneessen/daily-forecast/internal/logger"
)

// Fetcher performs the blocking forecast request
type Fetcher interface {
	FetchForecast(ctx context.Context, u *url.URL) (forecast.Collection, error)
}

// Result is the outcome of a single fetch
type Result struct {
	Query     string
	Forecast  forecast.Collection
	Err       error
	FetchedAt time.Time
}

type Pipeline struct {
	fetcher Fetcher
	log     *logger.Logger
	results chan Result
	busy    atomic.Bool
}

func New(fetcher Fetcher, log *logger.Logger) (*Pipeline, error) {
	if fetcher == nil {
		return nil, errors.New("forecast fetcher is required")
	}
	if log == nil {
		return nil, errors.New("logger is required")
	}
	return &Pipeline{
		fetcher: fetcher,
		log:     log,
		results: make(chan Result),
	}, nil
}

// Results returns the channel that completed fetches are delivered on
func (p *Pipeline) Results() <-chan Result {
	return p.results
}

// Busy reports whether a fetch is outstanding. The flag is cleared before the result is
// delivered, so a receiver of Results can start the next fetch right away.
func (p *Pipeline) Busy() bool {
	return p.busy.Load()
}

// Start launches the fetch for u on a new goroutine. It returns false without starting anything
// if a fetch is already outstanding.
func (p *Pipeline) Start(ctx context.Context, query string, u *url.URL) bool {
	if !p.busy.CompareAndSwap(false, true) {
		p.log.Debug("fetch already in progress, not starting another", slog.String("query", query))
		return false
	}
	go p.run(ctx, query, u)
	return true
}

func (p *Pipeline) run(ctx context.Context, query string, u *url.URL) {
	records, err := p.fetcher.FetchForecast(ctx, u)
	res := Result{Query: query, Forecast: records, Err: err, FetchedAt: time.Now()}
	if err != nil {
		res.Forecast = nil
	}
	p.busy.Store(false)

	select {
	case p.results <- res:
	case <-ctx.Done():
		p.log.Debug("context canceled, dropping forecast result", slog.String("query", query))
	}
}
