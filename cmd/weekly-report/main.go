package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"marketdesk/internal/bulletins"
	"marketdesk/internal/config"
	"marketdesk/internal/exporter"
	"marketdesk/internal/infrastructure"
	"marketdesk/internal/registry"
	"marketdesk/internal/services"
	"marketdesk/internal/views"
)

type options struct {
	configPath string
	date       string
	bulletin   string
	out        string
	history    string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "config file (defaults to $MARKETDESK_CONFIG or ./config.yaml)")
	flag.StringVar(&opts.date, "date", "", "active date YYYY-MM-DD (defaults to the latest bulletin)")
	flag.StringVar(&opts.bulletin, "bulletin", "", "bulletin id to anchor the report on")
	flag.StringVar(&opts.out, "out", "", "output directory (defaults to reports/<week> under the data directory)")
	flag.StringVar(&opts.history, "history", "", "directory of cumulative CSV files to append this week's rows to")
	flag.Parse()

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", slog.String("error", err.Error()))
		logger = slog.Default()
	}

	files, err := run(context.Background(), cfg, opts, logger)
	if err != nil {
		logger.Error("Weekly report failed", slog.String("error", err.Error()))
		_ = infrastructure.CloseLogFile()
		os.Exit(1)
	}
	_ = infrastructure.CloseLogFile()

	for _, f := range files {
		fmt.Println(f)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// run builds the dashboard for the selected date and writes its tables
func run(ctx context.Context, cfg *config.Config, opts options, logger *slog.Logger) ([]string, error) {
	reg, err := registry.Load(ctx, cfg.Data, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load datasets: %w", err)
	}

	catalog, err := bulletins.Load(cfg.Data.DataFile(cfg.Data.Bulletins))
	if err != nil {
		return nil, fmt.Errorf("failed to load bulletins: %w", err)
	}

	builder := views.NewBuilder(reg, views.OptionsFrom(cfg.Views))
	svc := services.NewDashboardService(reg, catalog, builder, nil, logger)

	dashboard, active, err := svc.Dashboard(ctx, services.Selector{Date: opts.date, Bulletin: opts.bulletin})
	if err != nil {
		return nil, err
	}

	out := opts.out
	if out == "" {
		out = filepath.Join(cfg.Data.Dir, "reports", active.Week)
	}

	logger.Info("Exporting weekly report",
		slog.String("date", active.Date.Format(views.DateLayout)),
		slog.String("source", active.Source),
		slog.String("out", out))

	files, err := exporter.NewReportExporter(out, logger).ExportDashboard(dashboard)
	if err != nil || opts.history == "" {
		return files, err
	}

	appended, err := exporter.NewReportExporter(opts.history, logger).AppendDashboard(dashboard)
	return append(files, appended...), err
}
