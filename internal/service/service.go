// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/vorlif/spreak"

	"github.com/wneessen/daily-forecast/internal/config"
	"github.com/wneessen/daily-forecast/internal/forecast"
	"github.com/wneessen/daily-forecast/internal/forecast/provider/openweathermap"
	"github.com/wneessen/daily-forecast/internal/http"
	"github.com/wneessen/daily-forecast/internal/icon"
	"github.com/wneessen/daily-forecast/internal/logger"
	"github.com/wneessen/daily-forecast/internal/pipeline"
	"github.com/wneessen/daily-forecast/internal/presenter"
)

// View is the presentation the service drives. All methods are called from the event loop only.
type View interface {
	ShowForecast(query string, fetchedAt time.Time, records forecast.Collection)
	ShowIcon(row int, img image.Image)
	ShowNotice(notice presenter.Notice)
}

type requestKind int

const (
	requestQuery requestKind = iota
	requestRefresh
	requestState
	requestInputClosed
)

type request struct {
	kind  requestKind
	query string
}

type Service struct {
	config    *config.Config
	logger    *logger.Logger
	t         *spreak.Localizer
	scheduler gocron.Scheduler
	source    forecast.Source
	pipeline  *pipeline.Pipeline
	icons     *icon.Cache
	view      View
	input     io.Reader
	requests  chan request
	SignalSrc signalSource

	// Event loop state, only accessed from Run
	lastQuery    string
	pendingQuery string
	hasPending   bool
	fetching     bool
	inputClosed  bool
	generation   uint64
	iconsPending int
	rows         int
}

func New(conf *config.Config, log *logger.Logger, t *spreak.Localizer) (*Service, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return newService(conf, log, t, http.New(log))
}

func newService(conf *config.Config, log *logger.Logger, t *spreak.Localizer, client *http.Client) (*Service, error) {
	if t == nil {
		return nil, fmt.Errorf("localizer is required")
	}
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	source, err := openweathermap.New(client, log, openweathermap.Options{
		BaseURL:           conf.API.BaseURL,
		APIKey:            conf.API.APIKey,
		Days:              conf.API.Days,
		RequestsPerMinute: conf.API.RequestsPerMinute,
		Format: forecast.Format{
			Location:    conf.TimeZone(),
			Units:       forecast.Units(conf.Units),
			Language:    t.Language(),
			IconBaseURL: conf.Icons.BaseURL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create forecast provider: %w", err)
	}
	pipe, err := pipeline.New(source, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create forecast pipeline: %w", err)
	}
	icons, err := icon.New(icon.NewHTTPFetcher(client), log, conf.Icons.CacheSize, conf.Icons.MaxConcurrent)
	if err != nil {
		return nil, fmt.Errorf("failed to create icon cache: %w", err)
	}

	pres, err := presenter.New(conf, t)
	if err != nil {
		return nil, fmt.Errorf("failed to create presenter: %w", err)
	}
	var view View
	switch conf.Output.Format {
	case "waybar":
		view = presenter.NewWaybar(pres, log, os.Stdout)
	default:
		view = presenter.NewTerminal(pres, log, os.Stdout, os.Stderr, conf.Output.ANSI)
	}

	return &Service{
		config:    conf,
		logger:    log,
		t:         t,
		scheduler: scheduler,
		source:    source,
		pipeline:  pipe,
		icons:     icons,
		view:      view,
		input:     os.Stdin,
		requests:  make(chan request),
		SignalSrc: stdLibSignalSource{},
	}, nil
}

// Run starts the event loop. It returns when the context is canceled or, if no refresh interval
// is configured, once the input is exhausted and the last forecast has been shown.
func (s *Service) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.config.Intervals.Refresh > 0 {
		if err := s.createScheduledJob(ctx, s.config.Intervals.Refresh, s.scheduledRefresh,
			"forecast_refresh_job"); err != nil {
			return err
		}
	}
	s.scheduler.Start()

	if s.config.RefreshOnResume {
		go s.monitorSleepResume(ctx)
	}
	if s.SignalSrc != nil {
		sigChan := make(chan os.Signal, 1)
		s.SignalSrc.Notify(sigChan, syscall.SIGUSR1, syscall.SIGUSR2)
		defer s.SignalSrc.Stop(sigChan)
		go s.HandleSignals(ctx, sigChan)
	}

	if s.config.Location != "" {
		s.handleQuery(ctx, s.config.Location)
	}
	go s.readQueries(ctx, s.input)

	s.loop(ctx)
	return s.scheduler.Shutdown()
}

func (s *Service) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-s.requests:
			s.handleRequest(ctx, req)
		case res := <-s.pipeline.Results():
			s.handleForecast(ctx, res)
		case res := <-s.icons.Results():
			s.handleIcon(res)
		}
		if s.done() {
			s.logger.Debug("input exhausted and no work left, stopping event loop")
			return
		}
	}
}

func (s *Service) done() bool {
	return s.inputClosed && s.config.Intervals.Refresh <= 0 && !s.fetching && !s.hasPending &&
		s.iconsPending == 0
}

func (s *Service) handleRequest(ctx context.Context, req request) {
	switch req.kind {
	case requestQuery:
		s.handleQuery(ctx, req.query)
	case requestRefresh:
		if s.lastQuery == "" {
			s.logger.Debug("no previous forecast to refresh")
			return
		}
		s.handleQuery(ctx, s.lastQuery)
	case requestState:
		s.logState()
	case requestInputClosed:
		s.inputClosed = true
	}
}

// handleQuery starts a forecast fetch for query. While a fetch is outstanding only the newest
// query is kept and started once the outstanding fetch has completed.
func (s *Service) handleQuery(ctx context.Context, query string) {
	if s.fetching {
		if s.hasPending {
			s.logger.Debug("replacing pending query", slog.String("old", s.pendingQuery),
				slog.String("new", query))
		}
		s.pendingQuery, s.hasPending = query, true
		return
	}

	reqURL, err := s.source.BuildRequestURL(query)
	if err != nil {
		s.logger.Error("failed to build forecast request URL", logger.Err(err), slog.String("query", query))
		s.notify(err)
		return
	}
	s.logger.Debug("fetching forecast", slog.String("query", query), slog.String("source", s.source.Name()))
	s.fetching = s.pipeline.Start(ctx, query, reqURL)
}

func (s *Service) handleForecast(ctx context.Context, res pipeline.Result) {
	s.fetching = false
	defer s.startPending(ctx)

	if res.Err != nil {
		s.logger.Error("failed to fetch forecast data", logger.Err(res.Err), slog.String("query", res.Query))
		s.notify(res.Err)
		return
	}

	s.generation++
	s.lastQuery = res.Query
	s.rows = len(res.Forecast)
	s.iconsPending = 0
	s.view.ShowForecast(res.Query, res.FetchedAt, res.Forecast)
	s.logger.Info("forecast updated", slog.String("query", res.Query), slog.Int("days", len(res.Forecast)))

	for i, rec := range res.Forecast {
		req := icon.Request{Locator: rec.IconURL(), Row: i, Generation: s.generation}
		if img, ok := s.icons.Get(ctx, req); ok {
			s.view.ShowIcon(i, img)
			continue
		}
		s.iconsPending++
	}
}

func (s *Service) startPending(ctx context.Context) {
	if !s.hasPending {
		return
	}
	query := s.pendingQuery
	s.pendingQuery, s.hasPending = "", false
	s.handleQuery(ctx, query)
}

// handleIcon applies a loaded icon to its row. Results for rows of a replaced forecast are dropped.
func (s *Service) handleIcon(res icon.Result) {
	if res.Generation != s.generation {
		s.logger.Debug("dropping icon of outdated forecast", slog.String("locator", res.Locator))
		return
	}
	if s.iconsPending > 0 {
		s.iconsPending--
	}
	if res.Err != nil || res.Image == nil {
		return
	}
	s.view.ShowIcon(res.Row, res.Image)
}

func (s *Service) notify(err error) {
	if notice, ok := presenter.NoticeFor(err); ok {
		s.view.ShowNotice(notice)
	}
}

func (s *Service) logState() {
	stats := s.icons.Stats()
	s.logger.Info("current forecast state", slog.String("query", s.lastQuery), slog.Int("rows", s.rows),
		slog.Uint64("generation", s.generation), slog.Bool("fetching", s.pipeline.Busy()),
		slog.String("pending", s.pendingQuery), slog.Int("cached_icons", s.icons.Len()),
		slog.Int64("icon_hits", stats.Hits), slog.Int64("icon_misses", stats.Misses))
}

// submit hands a request to the event loop. It gives up if the context is canceled.
func (s *Service) submit(ctx context.Context, req request) bool {
	select {
	case s.requests <- req:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Service) scheduledRefresh(ctx context.Context) {
	s.submit(ctx, request{kind: requestRefresh})
}

func (s *Service) createScheduledJob(ctx context.Context, interval time.Duration, task func(context.Context),
	jobName string,
) error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithContext(ctx),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName(jobName),
	)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", jobName, err)
	}
	return nil
}
