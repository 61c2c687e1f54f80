// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/wneessen/daily-forecast/internal/logger"
)

// readQueries reads one location query per line from r and hands it to the event loop. Blank
// lines are ignored. Once r is exhausted the loop is told that no more queries will follow.
func (s *Service) readQueries(ctx context.Context, r io.Reader) {
	if r == nil {
		s.submit(ctx, request{kind: requestInputClosed})
		return
	}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if !s.submit(ctx, request{kind: requestQuery, query: query}) {
			return
		}
	}
	if err := scanner.Err(); err != nil {
		s.logger.Error("failed to read location queries", logger.Err(err))
	}
	s.submit(ctx, request{kind: requestInputClosed})
}
