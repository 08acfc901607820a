package http

import (
	"context"

	"marketdesk/internal/bulletins"
	"marketdesk/internal/services"
	"marketdesk/internal/views"
)

// DashboardServiceInterface defines the views served over HTTP
type DashboardServiceInterface interface {
	Bulletins(ctx context.Context) []bulletins.Bulletin
	Bulletin(ctx context.Context, id string) (bulletins.Bulletin, error)

	Dashboard(ctx context.Context, sel services.Selector) (views.Dashboard, services.ActiveDate, error)
	Treasury(ctx context.Context, sel services.Selector) (services.TreasuryView, services.ActiveDate, error)
	Slopes(ctx context.Context, sel services.Selector) (views.SlopesTable, services.ActiveDate, error)
	Credit(ctx context.Context, sel services.Selector) (views.CreditTable, services.ActiveDate, error)
	Watchlist(ctx context.Context, sel services.Selector) (views.WatchlistTable, services.ActiveDate, error)
	Industries(ctx context.Context, sel services.Selector, region string) ([]views.IndustriesTable, services.ActiveDate, error)
	FedPath(ctx context.Context, sel services.Selector) (views.FedPath, services.ActiveDate, error)
	Series(ctx context.Context, sel services.Selector, dataset, key string, weeks int) (views.ChartData, services.ActiveDate, error)
}
