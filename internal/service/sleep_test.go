// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/wneessen/daily-forecast/internal/logger"
)

func TestIsResumeSignal(t *testing.T) {
	tests := []struct {
		name string
		sig  *dbus.Signal
		want bool
	}{
		{"resume", sleepSignal(false), true},
		{"going to sleep", sleepSignal(true), false},
		{"nil signal", nil, false},
		{"other member", &dbus.Signal{Name: logindInterface + ".PrepareForShutdown", Body: []any{false}}, false},
		{"empty body", &dbus.Signal{Name: logindSleepSignal}, false},
		{"too many arguments", &dbus.Signal{Name: logindSleepSignal, Body: []any{false, true}}, false},
		{"non-bool argument", &dbus.Signal{Name: logindSleepSignal, Body: []any{"false"}}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := isResumeSignal(tc.sig); got != tc.want {
				t.Errorf("expected %t, got %t", tc.want, got)
			}
		})
	}
}

func TestResumeWatcher_watch(t *testing.T) {
	t.Run("resume triggers a refresh after the delay", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			w, refreshes := testResumeWatcher()
			signals := make(chan *dbus.Signal, resumeSignalBuffer)
			ctx, cancel := context.WithCancel(t.Context())
			defer cancel()
			go w.watch(ctx, signals)

			signals <- sleepSignal(true)
			signals <- sleepSignal(false)
			time.Sleep(resumeRefreshDelay - time.Second)
			synctest.Wait()
			if got := refreshes.Load(); got != 0 {
				t.Fatalf("expected no refresh before the delay, got %d", got)
			}
			time.Sleep(time.Second * 2)
			synctest.Wait()
			if got := refreshes.Load(); got != 1 {
				t.Errorf("expected one refresh, got %d", got)
			}
		})
	})
	t.Run("repeated resume events are folded into one refresh", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			w, refreshes := testResumeWatcher()
			signals := make(chan *dbus.Signal, resumeSignalBuffer)
			ctx, cancel := context.WithCancel(t.Context())
			defer cancel()
			go w.watch(ctx, signals)

			for range 3 {
				signals <- sleepSignal(false)
			}
			time.Sleep(resumeRefreshDelay * 2)
			synctest.Wait()
			if got := refreshes.Load(); got != 1 {
				t.Errorf("expected one refresh, got %d", got)
			}

			signals <- sleepSignal(false)
			time.Sleep(resumeRefreshDelay)
			synctest.Wait()
			if got := refreshes.Load(); got != 2 {
				t.Errorf("expected a second refresh for a later resume, got %d", got)
			}
		})
	})
	t.Run("sleep events alone do not refresh", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			w, refreshes := testResumeWatcher()
			signals := make(chan *dbus.Signal, resumeSignalBuffer)
			done := make(chan struct{})
			go func() {
				w.watch(t.Context(), signals)
				close(done)
			}()

			signals <- sleepSignal(true)
			close(signals)
			<-done
			if got := refreshes.Load(); got != 0 {
				t.Errorf("expected no refresh, got %d", got)
			}
		})
	})
	t.Run("canceled context drops a scheduled refresh", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			w, refreshes := testResumeWatcher()
			signals := make(chan *dbus.Signal, resumeSignalBuffer)
			ctx, cancel := context.WithCancel(t.Context())
			done := make(chan struct{})
			go func() {
				w.watch(ctx, signals)
				close(done)
			}()

			signals <- sleepSignal(false)
			synctest.Wait()
			cancel()
			<-done
			time.Sleep(resumeRefreshDelay)
			if got := refreshes.Load(); got != 0 {
				t.Errorf("expected no refresh, got %d", got)
			}
		})
	})
	t.Run("service watcher submits a refresh request", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			serv := &Service{logger: logger.New(slog.LevelError), requests: make(chan request)}
			w := serv.newResumeWatcher()
			signals := make(chan *dbus.Signal, resumeSignalBuffer)
			ctx, cancel := context.WithCancel(t.Context())
			defer cancel()
			go w.watch(ctx, signals)

			signals <- sleepSignal(false)
			req := <-serv.requests
			if req.kind != requestRefresh {
				t.Errorf("expected refresh request, got %d", req.kind)
			}
		})
	})
}

func testResumeWatcher() (*resumeWatcher, *atomic.Int32) {
	refreshes := new(atomic.Int32)
	return &resumeWatcher{
		log:     logger.New(slog.LevelError),
		delay:   resumeRefreshDelay,
		refresh: func(context.Context) { refreshes.Add(1) },
	}, refreshes
}

func sleepSignal(sleeping bool) *dbus.Signal {
	return &dbus.Signal{Name: logindSleepSignal, Body: []any{sleeping}}
}
