// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/wneessen/daily-forecast/internal/logger"
)

const (
	logindInterface   = "org.freedesktop.login1.Manager"
	logindSleepMember = "PrepareForSleep"
	logindSleepSignal = logindInterface + "." + logindSleepMember

	resumeSignalBuffer = 8
	busRetryDelay      = 5 * time.Second
	// the network is usually not up right after resume
	resumeRefreshDelay = 10 * time.Second
)

// resumeWatcher turns logind resume notifications into forecast refreshes. Resume events that
// arrive while a refresh is already scheduled are folded into that refresh.
type resumeWatcher struct {
	log     *logger.Logger
	delay   time.Duration
	refresh func(context.Context)
}

func (s *Service) newResumeWatcher() *resumeWatcher {
	return &resumeWatcher{
		log:   s.logger,
		delay: resumeRefreshDelay,
		refresh: func(ctx context.Context) {
			s.submit(ctx, request{kind: requestRefresh})
		},
	}
}

// monitorSleepResume keeps a system bus subscription for PrepareForSleep alive until ctx is
// canceled, reconnecting when the bus goes away.
func (s *Service) monitorSleepResume(ctx context.Context) {
	w := s.newResumeWatcher()
	for {
		conn, signals, err := subscribeSleepSignals()
		if err != nil {
			w.log.Warn("sleep monitoring unavailable, retrying", logger.Err(err))
		} else {
			w.log.Debug("subscribed to dbus signal", slog.String("signal", logindSleepSignal))
			w.watch(ctx, signals)
			conn.RemoveSignal(signals)
			if err = conn.Close(); err != nil {
				w.log.Error("failed to close system bus connection", logger.Err(err))
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(busRetryDelay):
		}
	}
}

func subscribeSleepSignals() (*dbus.Conn, chan *dbus.Signal, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to system bus: %w", err)
	}
	if err = conn.AddMatchSignal(dbus.WithMatchInterface(logindInterface),
		dbus.WithMatchMember(logindSleepMember)); err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("failed to subscribe to %s: %w", logindSleepSignal, err)
	}
	signals := make(chan *dbus.Signal, resumeSignalBuffer)
	conn.Signal(signals)
	return conn, signals, nil
}

// watch handles signals until the channel is closed by the bus or ctx is canceled.
func (w *resumeWatcher) watch(ctx context.Context, signals <-chan *dbus.Signal) {
	var scheduled <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-signals:
			if !ok {
				return
			}
			if !isResumeSignal(sig) {
				continue
			}
			if scheduled != nil {
				w.log.Debug("refresh after resume already scheduled")
				continue
			}
			scheduled = time.After(w.delay)
		case <-scheduled:
			scheduled = nil
			w.log.Debug("resumed from sleep, refreshing forecast")
			w.refresh(ctx)
		}
	}
}

// isResumeSignal reports whether sig is PrepareForSleep(false), which logind emits after resume.
func isResumeSignal(sig *dbus.Signal) bool {
	if sig == nil || sig.Name != logindSleepSignal || len(sig.Body) != 1 {
		return false
	}
	sleeping, ok := sig.Body[0].(bool)
	return ok && !sleeping
}
