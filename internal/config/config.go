// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kkyr/fig"
)

const (
	configEnv = "DAILYFORECAST"

	DefaultRowTpl = `{{.Icon}} {{pad (printf "%s: %s" (loc .DayOfWeek) .Description) 34}} ` +
		`{{loc "low"}}: {{pad .MinTemp 6}} {{loc "high"}}: {{pad .MaxTemp 6}} {{loc "humidity"}}: {{.Humidity}}`
	DefaultTextTpl    = `{{with .First}}{{.Emoji}} {{.MaxTemp}}{{end}}`
	DefaultTooltipTpl = `{{loc "forecastfor"}} {{.Query}}` + "\n" +
		`{{range .Rows}}{{pad (loc .DayOfWeek) 10}} {{.Emoji}} {{.MinTemp}} / {{.MaxTemp}}, {{.Description}}` + "\n" +
		`{{end}}{{loc "fetched"}}: {{localizedTime .FetchedAt}}`

	maxDays = 16

	DefaultDays              = 16
	DefaultRequestsPerMinute = 60
	DefaultIconCacheSize     = 32
	DefaultIconConcurrency   = 4
)

// Config represents the application's configuration structure.
type Config struct {
	// Allowed values: imperial, metric, standard
	Units    string     `fig:"units" default:"imperial"`
	Locale   string     `fig:"locale"`
	Timezone string     `fig:"timezone"`
	LogLevel slog.Level `fig:"loglevel" default:"0"`
	// Location is queried once on start, in addition to the locations read from stdin
	Location        string `fig:"location"`
	RefreshOnResume bool   `fig:"refresh_on_resume"`

	API struct {
		BaseURL string `fig:"base_url" default:"https://api.openweathermap.org/data/2.5/forecast/daily?q="`
		APIKey  string `fig:"apikey"`
		// Allowed values: 1 to 16
		Days              uint    `fig:"days"`
		RequestsPerMinute float64 `fig:"requests_per_minute"`
	} `fig:"api"`

	Icons struct {
		BaseURL       string `fig:"base_url" default:"http://openweathermap.org/img/w"`
		CacheSize     int    `fig:"cache_size"`
		MaxConcurrent int    `fig:"max_concurrent"`
	} `fig:"icons"`

	Intervals struct {
		// Refresh re-queries the last location; zero disables it
		Refresh time.Duration `fig:"refresh"`
	} `fig:"intervals"`

	Output struct {
		// Allowed values: text, waybar
		Format string `fig:"format" default:"text"`
		ANSI   bool   `fig:"ansi"`
	} `fig:"output"`

	Templates struct {
		Row     string `fig:"row"`
		Text    string `fig:"text"`
		Tooltip string `fig:"tooltip"`
	} `fig:"templates"`
}

func NewFromFile(path, file string) (*Config, error) {
	conf := newDefault()
	_, err := os.Stat(filepath.Join(path, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read Config: %w", err)
	}
	if err = fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func New() (*Config, error) {
	conf := newDefault()
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

// newDefault presets the numeric settings that must be at least 1. fig replaces zero values
// with their default tag, which would hide an explicit 0, so these are set before loading.
func newDefault() *Config {
	conf := new(Config)
	conf.API.Days = DefaultDays
	conf.API.RequestsPerMinute = DefaultRequestsPerMinute
	conf.Icons.CacheSize = DefaultIconCacheSize
	conf.Icons.MaxConcurrent = DefaultIconConcurrency
	return conf
}

func (c *Config) Validate() error {
	c.Units = strings.ToLower(c.Units)
	switch c.Units {
	case "imperial", "metric", "standard":
	default:
		return fmt.Errorf("invalid units: %s", c.Units)
	}
	if c.Locale == "" {
		c.Locale = getLocale()
	}
	if c.API.APIKey == "" {
		return fmt.Errorf("an API key is required")
	}
	if c.API.Days < 1 || c.API.Days > maxDays {
		return fmt.Errorf("invalid forecast days: %d", c.API.Days)
	}
	if c.API.RequestsPerMinute <= 0 {
		return fmt.Errorf("invalid requests per minute: %f", c.API.RequestsPerMinute)
	}
	if c.Icons.CacheSize < 1 {
		return fmt.Errorf("invalid icon cache size: %d", c.Icons.CacheSize)
	}
	if c.Icons.MaxConcurrent < 1 {
		return fmt.Errorf("invalid icon fetch concurrency: %d", c.Icons.MaxConcurrent)
	}
	if c.Intervals.Refresh < 0 {
		return fmt.Errorf("invalid refresh interval: %s", c.Intervals.Refresh)
	}
	c.Output.Format = strings.ToLower(c.Output.Format)
	if c.Output.Format != "text" && c.Output.Format != "waybar" {
		return fmt.Errorf("invalid output format: %s", c.Output.Format)
	}
	if c.Templates.Row == "" {
		c.Templates.Row = DefaultRowTpl
	}
	if c.Templates.Text == "" {
		c.Templates.Text = DefaultTextTpl
	}
	if c.Templates.Tooltip == "" {
		c.Templates.Tooltip = DefaultTooltipTpl
	}

	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("invalid timezone: %w", err)
		}
	}

	return nil
}

// TimeZone returns the configured time zone, or the local time zone if none is set.
func (c *Config) TimeZone() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	zone, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return zone
}

func getLocale() string {
	locale := os.Getenv("LC_MESSAGES")
	if idx := strings.Index(locale, "."); idx != -1 {
		lang := locale[:idx]
		return strings.ReplaceAll(lang, "_", "-")
	}
	return locale
}
