package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"marketdesk/internal/alignment"
	"marketdesk/internal/bulletins"
	"marketdesk/internal/infrastructure"
	"marketdesk/internal/registry"
	"marketdesk/internal/views"
	"marketdesk/pkg/contracts/domain"
)

// TracerName is the tracer used for view builds
const TracerName = "marketdesk.views"

// maxChartWeeks bounds the weeks parameter of series charts
const maxChartWeeks = 520

// Active date sources
const (
	SourceDate           = "date"
	SourceBulletin       = "bulletin"
	SourceLatestBulletin = "latest_bulletin"
	SourceLatestData     = "latest_data"
)

// Selector picks the active date of a request. Date wins over Bulletin;
// when both are empty the latest bulletin is used.
type Selector struct {
	Date     string `validate:"omitempty,datetime=2006-01-02"`
	Bulletin string `validate:"omitempty,max=128"`
}

// ActiveDate is the resolved anchor of every view of a request
type ActiveDate struct {
	Date     time.Time           `json:"date"`
	Week     string              `json:"week"`
	Source   string              `json:"source"`
	Bulletin *bulletins.Bulletin `json:"bulletin,omitempty"`
}

// TreasuryView is the yield curve table with its chart
type TreasuryView struct {
	Curve views.YieldCurveTable `json:"curve"`
	Chart views.ChartData       `json:"chart"`
}

// DashboardService builds the derived views for a selected active date
type DashboardService struct {
	registry  *registry.Registry
	bulletins *bulletins.Catalog
	builder   *views.Builder
	validate  *validator.Validate
	tracer    trace.Tracer
	metrics   *infrastructure.BusinessMetrics
	logger    *slog.Logger
}

// NewDashboardService creates a dashboard service. metrics may be nil.
func NewDashboardService(reg *registry.Registry, catalog *bulletins.Catalog, builder *views.Builder, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	if catalog == nil {
		catalog, _ = bulletins.New(nil)
	}

	logger = logger.With(slog.String("component", "dashboard_service"))
	logger.Info("DashboardService initialized",
		slog.Int("bulletins", catalog.Len()),
		slog.Int("max_gap_days", builder.Options().MaxGapDays),
		slog.String("calendar", builder.Calendar().MIC))

	return &DashboardService{
		registry:  reg,
		bulletins: catalog,
		builder:   builder,
		validate:  validator.New(),
		tracer:    otel.Tracer(TracerName),
		metrics:   metrics,
		logger:    logger,
	}
}

// Bulletins returns every bulletin, newest first
func (s *DashboardService) Bulletins(ctx context.Context) []bulletins.Bulletin {
	return s.bulletins.List()
}

// Bulletin returns one bulletin by id
func (s *DashboardService) Bulletin(ctx context.Context, id string) (bulletins.Bulletin, error) {
	b, err := s.bulletins.Get(id)
	if errors.Is(err, bulletins.ErrNotFound) {
		return bulletins.Bulletin{}, fmt.Errorf("%w: %s", ErrBulletinNotFound, id)
	}
	return b, err
}

// ResolveActiveDate turns a selector into the active date
func (s *DashboardService) ResolveActiveDate(ctx context.Context, sel Selector) (ActiveDate, error) {
	if err := s.validate.Struct(sel); err != nil {
		return ActiveDate{}, fmt.Errorf("%w: %q", ErrInvalidDate, sel.Date)
	}

	active := ActiveDate{}
	switch {
	case sel.Date != "":
		t, err := time.Parse(views.DateLayout, sel.Date)
		if err != nil {
			return ActiveDate{}, fmt.Errorf("%w: %q", ErrInvalidDate, sel.Date)
		}
		active.Date = t
		active.Source = SourceDate

	case sel.Bulletin != "":
		b, err := s.Bulletin(ctx, sel.Bulletin)
		if err != nil {
			return ActiveDate{}, err
		}
		active.Date = b.SortDate
		active.Source = SourceBulletin
		active.Bulletin = &b

	default:
		if b, ok := s.bulletins.Latest(); ok {
			active.Date = b.SortDate
			active.Source = SourceLatestBulletin
			active.Bulletin = &b
		} else if t, ok := s.registry.Latest(domain.DatasetTreasury); ok {
			active.Date = t
			active.Source = SourceLatestData
		} else {
			return ActiveDate{}, ErrNoActiveDate
		}
	}

	active.Date = domain.TruncateDay(active.Date)
	active.Week = alignment.WeekOf(active.Date).String()
	return active, nil
}

// Dashboard builds every view for the selected date
func (s *DashboardService) Dashboard(ctx context.Context, sel Selector) (views.Dashboard, ActiveDate, error) {
	active, err := s.ResolveActiveDate(ctx, sel)
	if err != nil {
		return views.Dashboard{}, ActiveDate{}, err
	}

	var d views.Dashboard
	s.observe(ctx, "dashboard", active, func() int {
		d = s.builder.Dashboard(active.Date)
		return d.Missing()
	})
	return d, active, nil
}

// Treasury builds the yield curve table and chart
func (s *DashboardService) Treasury(ctx context.Context, sel Selector) (TreasuryView, ActiveDate, error) {
	active, err := s.ResolveActiveDate(ctx, sel)
	if err != nil {
		return TreasuryView{}, ActiveDate{}, err
	}

	var v TreasuryView
	s.observe(ctx, "treasury", active, func() int {
		v.Curve = s.builder.YieldCurve(active.Date)
		v.Chart = s.builder.CurveChart(active.Date)
		return v.Curve.Missing
	})
	return v, active, nil
}

// Slopes builds the curve slopes table
func (s *DashboardService) Slopes(ctx context.Context, sel Selector) (views.SlopesTable, ActiveDate, error) {
	active, err := s.ResolveActiveDate(ctx, sel)
	if err != nil {
		return views.SlopesTable{}, ActiveDate{}, err
	}

	var t views.SlopesTable
	s.observe(ctx, "slopes", active, func() int {
		t = s.builder.Slopes(active.Date)
		return t.Missing
	})
	return t, active, nil
}

// Credit builds the credit spreads table
func (s *DashboardService) Credit(ctx context.Context, sel Selector) (views.CreditTable, ActiveDate, error) {
	active, err := s.ResolveActiveDate(ctx, sel)
	if err != nil {
		return views.CreditTable{}, ActiveDate{}, err
	}

	var t views.CreditTable
	s.observe(ctx, "credit", active, func() int {
		t = s.builder.Credit(active.Date)
		return t.Missing
	})
	return t, active, nil
}

// Watchlist builds the watchlist table
func (s *DashboardService) Watchlist(ctx context.Context, sel Selector) (views.WatchlistTable, ActiveDate, error) {
	active, err := s.ResolveActiveDate(ctx, sel)
	if err != nil {
		return views.WatchlistTable{}, ActiveDate{}, err
	}

	var t views.WatchlistTable
	s.observe(ctx, "watchlist", active, func() int {
		t = s.builder.Watchlist(active.Date)
		return t.Missing
	})
	return t, active, nil
}

// Industries builds the sector tables. An empty region builds every region.
func (s *DashboardService) Industries(ctx context.Context, sel Selector, region string) ([]views.IndustriesTable, ActiveDate, error) {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region != "" && !views.ValidRegion(region) {
		return nil, ActiveDate{}, fmt.Errorf("%w: %q", ErrInvalidRegion, region)
	}

	active, err := s.ResolveActiveDate(ctx, sel)
	if err != nil {
		return nil, ActiveDate{}, err
	}

	var tables []views.IndustriesTable
	s.observe(ctx, "industries", active, func() int {
		if region == "" {
			tables = s.builder.AllIndustries(active.Date)
		} else {
			tables = []views.IndustriesTable{s.builder.Industries(active.Date, region)}
		}
		missing := 0
		for _, t := range tables {
			missing += t.Missing
		}
		return missing
	})
	return tables, active, nil
}

// FedPath builds the implied policy path
func (s *DashboardService) FedPath(ctx context.Context, sel Selector) (views.FedPath, ActiveDate, error) {
	active, err := s.ResolveActiveDate(ctx, sel)
	if err != nil {
		return views.FedPath{}, ActiveDate{}, err
	}

	var p views.FedPath
	s.observe(ctx, "fed_path", active, func() int {
		p = s.builder.FedPath(active.Date)
		return p.Missing
	})
	return p, active, nil
}

// Series builds the chart of one instrument. Zero weeks uses the configured
// chart window.
func (s *DashboardService) Series(ctx context.Context, sel Selector, dataset, key string, weeks int) (views.ChartData, ActiveDate, error) {
	id := domain.DatasetID(strings.ToLower(dataset))
	ds, ok := s.registry.Dataset(id)
	if !ok || ds.Shape == registry.ShapeFutures {
		return nil, ActiveDate{}, fmt.Errorf("%w: %q", ErrUnknownDataset, dataset)
	}

	k := domain.InstrumentKey(strings.ToUpper(key))
	if _, ok := ds.Instrument(k); !ok {
		return nil, ActiveDate{}, fmt.Errorf("%w: %s/%s", ErrUnknownInstrument, id, key)
	}

	if weeks < 0 || weeks > maxChartWeeks {
		return nil, ActiveDate{}, fmt.Errorf("%w: %d", ErrInvalidWeeks, weeks)
	}

	active, err := s.ResolveActiveDate(ctx, sel)
	if err != nil {
		return nil, ActiveDate{}, err
	}

	var chart views.ChartData
	s.observe(ctx, "series", active, func() int {
		chart = s.builder.SeriesChart(id, k, active.Date, weeks)
		if chart.Kind() == views.KindNoData {
			return 1
		}
		return 0
	})
	return chart, active, nil
}

// observe runs one view build inside a span and records its metrics
func (s *DashboardService) observe(ctx context.Context, view string, active ActiveDate, build func() int) {
	ctx, span := s.tracer.Start(ctx, "views.build."+view,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("view.name", view),
			attribute.String("view.active_date", active.Date.Format(views.DateLayout)),
			attribute.String("view.source", active.Source),
		),
	)
	defer span.End()

	start := time.Now()
	missing := build()
	duration := time.Since(start)

	span.SetAttributes(attribute.Int("view.missing", missing))
	infrastructure.RecordViewMetrics(ctx, s.metrics, view, duration, missing, nil)

	s.logger.DebugContext(ctx, "View built",
		slog.String("view", view),
		slog.String("active_date", active.Date.Format(views.DateLayout)),
		slog.String("source", active.Source),
		slog.Int("missing", missing),
		slog.Duration("duration", duration))
}
