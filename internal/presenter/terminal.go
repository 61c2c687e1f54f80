// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/wneessen/daily-forecast/internal/forecast"
	"github.com/wneessen/daily-forecast/internal/logger"
)

const clearScreen = "\x1b[H\x1b[2J"

// Terminal renders the forecast as list of rows to a terminal. It is not safe for concurrent
// use; all calls are expected from the service event loop.
type Terminal struct {
	pres   *Presenter
	log    *logger.Logger
	out    io.Writer
	errOut io.Writer
	ansi   bool

	ctx TemplateContext
}

// NewTerminal returns a terminal view. With ansi enabled every change repaints the screen and
// loaded icons are shown as colour swatches.
func NewTerminal(pres *Presenter, log *logger.Logger, out, errOut io.Writer, ansi bool) *Terminal {
	return &Terminal{
		pres:   pres,
		log:    log,
		out:    out,
		errOut: errOut,
		ansi:   ansi,
	}
}

func (t *Terminal) ShowForecast(query string, fetchedAt time.Time, records forecast.Collection) {
	t.ctx = t.pres.BuildContext(query, fetchedAt, records)
	t.draw()
}

func (t *Terminal) ShowIcon(row int, img image.Image) {
	if row < 0 || row >= len(t.ctx.Rows) {
		return
	}
	t.ctx.Rows[row].Loaded = true
	if !t.ansi {
		return
	}
	t.ctx.Rows[row].Icon = swatch(img)
	t.draw()
}

func (t *Terminal) ShowNotice(notice Notice) {
	if _, err := fmt.Fprintln(t.errOut, t.pres.Localize(notice.String())); err != nil {
		t.log.Error("failed to write notice", logger.Err(err))
	}
}

// Context returns the currently displayed rows
func (t *Terminal) Context() TemplateContext {
	return t.ctx
}

func (t *Terminal) draw() {
	buf := bytes.NewBuffer(nil)
	if t.ansi {
		buf.WriteString(clearScreen)
	}
	_, _ = fmt.Fprintf(buf, "%s %s\n", t.pres.loc("forecastfor"), t.ctx.Query)
	for _, row := range t.ctx.Rows {
		line, err := t.pres.RenderRow(row)
		if err != nil {
			t.log.Error("failed to render forecast row", logger.Err(err))
			return
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	_, _ = fmt.Fprintf(buf, "%s: %s\n", t.pres.loc("fetched"), t.pres.localizedTime(t.ctx.FetchedAt))

	if _, err := t.out.Write(buf.Bytes()); err != nil {
		t.log.Error("failed to write forecast", logger.Err(err))
	}
}
