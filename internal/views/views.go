// Package views turns registry series into the formatted tables and chart
// payloads of the weekly dashboard.
//
// Every builder is a pure function of the registry, the options and the
// active date. Values that cannot be aligned come out as missing cells
// rendered with Placeholder; nothing in this package returns an error for
// a data gap.
package views

import (
	"time"

	"marketdesk/internal/alignment"
	"marketdesk/internal/config"
	"marketdesk/internal/registry"
	"marketdesk/pkg/contracts/domain"
)

const (
	day  = 24 * time.Hour
	week = 7 * day

	// trailingYear is the 52 week high window
	trailingYear = 52 * week

	// DateLayout is how dates are rendered in tables
	DateLayout = "2006-01-02"
)

// Options tunes the derived views
type Options struct {
	MaxGapDays  int
	CycleMonths int
	ChartWeeks  int
	Calendar    string
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		MaxGapDays:  alignment.DefaultMaxGapDays,
		CycleMonths: config.DefaultCycleMonths,
		ChartWeeks:  config.DefaultChartWeeks,
		Calendar:    config.DefaultCalendar,
	}
}

// OptionsFrom maps the views section of the configuration
func OptionsFrom(cfg config.ViewsConfig) Options {
	opts := Options{
		MaxGapDays:  cfg.MaxGapDays,
		CycleMonths: cfg.CycleMonths,
		ChartWeeks:  cfg.ChartWeeks,
		Calendar:    cfg.Calendar,
	}
	def := DefaultOptions()
	if opts.CycleMonths <= 0 {
		opts.CycleMonths = def.CycleMonths
	}
	if opts.ChartWeeks <= 0 {
		opts.ChartWeeks = def.ChartWeeks
	}
	if opts.Calendar == "" {
		opts.Calendar = def.Calendar
	}
	return opts
}

// Builder derives views from one registry
type Builder struct {
	reg      *registry.Registry
	opts     Options
	calendar *TradingCalendar
}

// NewBuilder creates a builder over reg
func NewBuilder(reg *registry.Registry, opts Options) *Builder {
	return &Builder{
		reg:      reg,
		opts:     opts,
		calendar: NewTradingCalendar(opts.Calendar),
	}
}

// Options returns the builder options
func (b *Builder) Options() Options {
	return b.opts
}

// Calendar returns the trading calendar used for as-of dates
func (b *Builder) Calendar() *TradingCalendar {
	return b.calendar
}

// AsOf returns the week-ending business day for active
func (b *Builder) AsOf(active time.Time) time.Time {
	return b.calendar.WeekEnding(active)
}

// label returns the display label of key, or the key itself
func (b *Builder) label(id domain.DatasetID, key domain.InstrumentKey) registry.Instrument {
	if ds, ok := b.reg.Dataset(id); ok {
		if in, ok := ds.Instrument(key); ok {
			return in
		}
	}
	return registry.Instrument{Key: key, Label: string(key)}
}

func formatDate(p domain.PricePoint, ok bool) string {
	if !ok {
		return ""
	}
	return p.Time.Format(DateLayout)
}
