// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package forecast holds the display-ready daily forecast records and the parser that builds
// them from a daily forecast API payload.
package forecast

import (
	"context"
	"math"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultIconBaseURL is the base path the condition icons are served from
const DefaultIconBaseURL = "http://openweathermap.org/img/w"

// Units selects the unit system of the requested and displayed temperatures.
type Units string

const (
	UnitsImperial Units = "imperial"
	UnitsMetric   Units = "metric"
	UnitsStandard Units = "standard"
)

// TempSuffix returns the unit symbol appended to the formatted temperatures
func (u Units) TempSuffix() string {
	switch u {
	case UnitsMetric:
		return "°C"
	case UnitsStandard:
		return "K"
	default:
		return "°F"
	}
}

// Source is implemented by each daily forecast API backend.
type Source interface {
	Name() string
	BuildRequestURL(query string) (*url.URL, error)
	FetchForecast(ctx context.Context, u *url.URL) (Collection, error)
}

// Format is the formatting context for the records of a single parse pass.
type Format struct {
	Location    *time.Location
	Units       Units
	Language    language.Tag
	IconBaseURL string
}

// Record is one day of formatted forecast data. A Record is never modified after construction.
type Record struct {
	Time        time.Time
	DayOfWeek   string
	MinTemp     string
	MaxTemp     string
	Humidity    string
	Description string
	IconID      string

	iconBase string
}

// Collection is the ordered list of records of a forecast, in chronological order.
type Collection []Record

// NewRecord formats the raw values of a single forecast day.
func NewRecord(f Format, timestamp int64, minTemp, maxTemp, humidity float64, description, icon string) Record {
	loc := f.Location
	if loc == nil {
		loc = time.Local
	}
	iconBase := f.IconBaseURL
	if iconBase == "" {
		iconBase = DefaultIconBaseURL
	}
	printer := message.NewPrinter(f.Language)
	instant := time.Unix(timestamp, 0).In(loc)

	return Record{
		Time:        instant,
		DayOfWeek:   instant.Weekday().String(),
		MinTemp:     formatRounded(printer, minTemp) + f.Units.TempSuffix(),
		MaxTemp:     formatRounded(printer, maxTemp) + f.Units.TempSuffix(),
		Humidity:    formatRounded(printer, humidity) + "%",
		Description: description,
		IconID:      icon,
		iconBase:    strings.TrimRight(iconBase, "/"),
	}
}

// IconURL returns the locator of the condition icon. It is also the key of the icon cache.
func (r Record) IconURL() string {
	base := r.iconBase
	if base == "" {
		base = DefaultIconBaseURL
	}
	return base + "/" + r.IconID + ".png"
}

// First returns the earliest record of the collection, if any.
func (c Collection) First() (Record, bool) {
	if len(c) == 0 {
		return Record{}, false
	}
	return c[0], true
}

// formatRounded rounds val half to even and formats it without fraction digits. The value stays
// a float, so magnitudes beyond the int64 range keep their sign and digits.
func formatRounded(printer *message.Printer, val float64) string {
	rounded := math.RoundToEven(val)
	if rounded == 0 {
		rounded = 0 // drop the sign of -0
	}
	return printer.Sprint(number.Decimal(rounded, number.MaxFractionDigits(0)))
}
