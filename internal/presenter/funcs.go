// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"text/template"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/vorlif/humanize"
)

func (p *Presenter) templateFuncMap() template.FuncMap {
	return template.FuncMap{
		"timeFormat":    p.timeFormat,
		"localizedTime": p.localizedTime,
		"ago":           p.ago,
		"loc":           p.loc,
		"lc":            strings.ToLower,
		"uc":            strings.ToUpper,
		"pad":           pad,
		"trunc":         trunc,
	}
}

func (p *Presenter) loc(val string) string {
	key := strings.ToLower(val)
	if raw, ok := i18nVars[key]; ok {
		return p.localizer.Get(raw)
	}
	return val
}

func (p *Presenter) localizedTime(val time.Time) string {
	return p.humanizer.FormatTime(val, humanize.TimeFormat)
}

func (p *Presenter) ago(val time.Time) string {
	return p.humanizer.NaturalTime(val)
}

func (p *Presenter) timeFormat(val time.Time, fmt string) string {
	return val.Format(fmt)
}

// pad fills val with spaces up to the given display width. Wide runes and emoji count with
// their terminal width.
func pad(val string, width int) string {
	return runewidth.FillRight(val, width)
}

func trunc(val string, width int) string {
	return runewidth.Truncate(val, width, "…")
}

// swatch renders a two cell wide block in the average colour of the opaque pixels of img.
func swatch(img image.Image) string {
	r, g, b, ok := averageColor(img)
	if !ok {
		return "  "
	}
	return fmt.Sprintf("\x1b[48;2;%d;%d;%dm  \x1b[0m", r, g, b)
}

func averageColor(img image.Image) (uint8, uint8, uint8, bool) {
	if img == nil {
		return 0, 0, 0, false
	}
	var sumR, sumG, sumB, count uint64
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A < 0x80 {
				continue
			}
			sumR += uint64(c.R)
			sumG += uint64(c.G)
			sumB += uint64(c.B)
			count++
		}
	}
	if count == 0 {
		return 0, 0, 0, false
	}
	return uint8(sumR / count), uint8(sumG / count), uint8(sumB / count), true //nolint:gosec
}
