// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/vorlif/humanize"
	"github.com/vorlif/humanize/locale/de"
	"github.com/vorlif/spreak"

	"github.com/wneessen/daily-forecast/internal/config"
	"github.com/wneessen/daily-forecast/internal/forecast"
)

// Row wraps a forecast record with presentation-related fields.
type Row struct {
	forecast.Record

	Index int
	// Emoji is the condition emoji derived from the icon code
	Emoji string
	// Icon is the rendered icon cell. It holds the emoji until the icon bitmap has been loaded.
	Icon   string
	Loaded bool
}

type TemplateContext struct {
	Query     string
	FetchedAt time.Time
	First     *Row
	Rows      []Row
}

type Presenter struct {
	RowTemplate     *template.Template
	TextTemplate    *template.Template
	TooltipTemplate *template.Template

	localizer *spreak.Localizer
	humanizer *humanize.Humanizer
}

func New(conf *config.Config, loc *spreak.Localizer) (*Presenter, error) {
	if loc == nil {
		return nil, fmt.Errorf("localizer is required")
	}
	collection := humanize.MustNew(humanize.WithLocale(de.New()))
	pres := &Presenter{
		localizer: loc,
		humanizer: collection.CreateHumanizer(loc.Language()),
	}

	var err error
	if pres.RowTemplate, err = pres.parse("row", conf.Templates.Row); err != nil {
		return nil, err
	}
	if pres.TextTemplate, err = pres.parse("text", conf.Templates.Text); err != nil {
		return nil, err
	}
	if pres.TooltipTemplate, err = pres.parse("tooltip", conf.Templates.Tooltip); err != nil {
		return nil, err
	}

	// Execute the templates once, so that invalid field references fail early
	sample := pres.BuildContext("Sample", time.Now(), forecast.Collection{
		forecast.NewRecord(forecast.Format{Language: loc.Language()}, time.Now().Unix(), 1, 2, 3, "clear sky", "01d"),
	})
	if _, err = pres.RenderRow(sample.Rows[0]); err != nil {
		return nil, err
	}
	if _, err = pres.Render(sample); err != nil {
		return nil, err
	}

	return pres, nil
}

// BuildContext wraps the records of a forecast into rows. All rows start without a loaded icon.
func (p *Presenter) BuildContext(query string, fetchedAt time.Time, records forecast.Collection) TemplateContext {
	ctx := TemplateContext{
		Query:     query,
		FetchedAt: fetchedAt,
		Rows:      make([]Row, 0, len(records)),
	}
	for i, rec := range records {
		emoji := ConditionIcon(rec.IconID)
		ctx.Rows = append(ctx.Rows, Row{Record: rec, Index: i, Emoji: emoji, Icon: emoji})
	}
	if len(ctx.Rows) > 0 {
		ctx.First = &ctx.Rows[0]
	}
	return ctx
}

// RenderRow renders a single row using the row template
func (p *Presenter) RenderRow(row Row) (string, error) {
	buf := bytes.NewBuffer(nil)
	if err := p.RowTemplate.Execute(buf, row); err != nil {
		return "", fmt.Errorf("failed to render row template: %w", err)
	}
	return buf.String(), nil
}

// Render renders the text and tooltip templates for the given context.
func (p *Presenter) Render(ctx TemplateContext) (map[string]string, error) {
	outputs := map[string]*template.Template{
		"text":    p.TextTemplate,
		"tooltip": p.TooltipTemplate,
	}
	result := make(map[string]string, len(outputs))
	for name, tpl := range outputs {
		buf := bytes.NewBuffer(nil)
		if err := tpl.Execute(buf, ctx); err != nil {
			return nil, fmt.Errorf("failed to render %s template: %w", name, err)
		}
		result[name] = buf.String()
	}
	return result, nil
}

// Localize returns the translation of a message
func (p *Presenter) Localize(msg string) string {
	return p.localizer.Get(msg)
}

func (p *Presenter) parse(name, text string) (*template.Template, error) {
	tpl, err := template.New(name).Funcs(p.templateFuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
	}
	return tpl, nil
}
