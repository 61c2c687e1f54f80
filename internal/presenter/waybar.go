// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"encoding/json"
	"image"
	"io"
	"slices"
	"time"

	"github.com/wneessen/daily-forecast/internal/forecast"
	"github.com/wneessen/daily-forecast/internal/logger"
)

const (
	OutputClass      = "daily-forecast"
	StaleOutputClass = "stale"
	ErrorOutputClass = "error"
	noticeText       = "⚠"
)

type outputData struct {
	Text    string   `json:"text"`
	Tooltip string   `json:"tooltip"`
	Classes []string `json:"class"`
}

// Waybar renders the forecast as waybar custom module JSON, one object per line. Icon bitmaps
// can't be shown in the bar, the condition emoji is used instead.
type Waybar struct {
	pres *Presenter
	log  *logger.Logger
	out  io.Writer

	ctx  TemplateContext
	last *outputData
}

func NewWaybar(pres *Presenter, log *logger.Logger, out io.Writer) *Waybar {
	return &Waybar{pres: pres, log: log, out: out}
}

func (w *Waybar) ShowForecast(query string, fetchedAt time.Time, records forecast.Collection) {
	w.ctx = w.pres.BuildContext(query, fetchedAt, records)
	outputs, err := w.pres.Render(w.ctx)
	if err != nil {
		w.log.Error("failed to render weather template", logger.Err(err))
		return
	}
	output := &outputData{
		Text:    outputs["text"],
		Tooltip: outputs["tooltip"],
		Classes: []string{OutputClass},
	}
	w.last = output
	w.write(output)
}

func (w *Waybar) ShowIcon(row int, _ image.Image) {
	if row < 0 || row >= len(w.ctx.Rows) {
		return
	}
	w.ctx.Rows[row].Loaded = true
}

// ShowNotice repeats the last output marked as stale, with the notice on top of the tooltip.
func (w *Waybar) ShowNotice(notice Notice) {
	msg := w.pres.Localize(notice.String())
	if w.last == nil {
		w.write(&outputData{Text: noticeText, Tooltip: msg, Classes: []string{OutputClass, ErrorOutputClass}})
		return
	}
	output := &outputData{
		Text:    w.last.Text,
		Tooltip: msg + "\n\n" + w.last.Tooltip,
		Classes: append(slices.Clone(w.last.Classes), StaleOutputClass),
	}
	w.write(output)
}

func (w *Waybar) write(output *outputData) {
	if err := json.NewEncoder(w.out).Encode(output); err != nil {
		w.log.Error("failed to encode weather data", logger.Err(err))
	}
}
