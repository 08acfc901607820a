package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"marketdesk/internal/bulletins"
	"marketdesk/internal/config"
	apierrors "marketdesk/internal/errors"
	"marketdesk/internal/infrastructure"
	customMiddleware "marketdesk/internal/middleware"
	"marketdesk/internal/registry"
	"marketdesk/internal/services"
	handlers "marketdesk/internal/transport/http"
	"marketdesk/internal/views"
)

// compressionLevel is the zstd/gzip level of API responses
const compressionLevel = 5

// BuildTime is set at link time with -ldflags "-X marketdesk/internal/app.BuildTime=..."
var BuildTime = ""

// Application represents the main application container
type Application struct {
	Config           *config.Config
	Router           *chi.Mux
	Server           *http.Server
	Registry         *registry.Registry
	Bulletins        *bulletins.Catalog
	DashboardService *services.DashboardService
	HealthService    *services.HealthService
	ErrorHandler     *apierrors.ErrorHandler
	Logger           *slog.Logger
	OTelProviders    *infrastructure.OTelProviders
	Metrics          *infrastructure.BusinessMetrics
}

// NewApplication loads the data files named by cfg and wires every service,
// handler and middleware. A nil cfg loads the configuration from the usual
// locations; a nil logger initializes the infrastructure logger from it.
func NewApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, apierrors.NewConfigError("failed to load configuration", err)
		}
		cfg = loaded
	}

	if logger == nil {
		l, err := infrastructure.InitializeLogger(cfg.Logging)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
	}

	logger.InfoContext(ctx, "Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("data_dir", cfg.Data.Dir))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.NewOTelConfig(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
	}

	if err := a.loadData(ctx); err != nil {
		return nil, err
	}

	a.initializeServices()
	a.setupRouter()
	a.createServer()

	return a, nil
}

// loadData parses every configured dataset and the bulletin manifest
func (a *Application) loadData(ctx context.Context) error {
	start := time.Now()
	reg, err := registry.Load(ctx, a.Config.Data, a.Logger)
	if err != nil {
		return apierrors.NewStorageError("failed to load datasets", err)
	}
	duration := time.Since(start)

	for _, st := range reg.Stats() {
		infrastructure.RecordRegistryMetrics(ctx, a.Metrics, string(st.Dataset), st.Files, st.Points, duration)
	}
	a.Registry = reg

	manifest := a.Config.Data.DataFile(a.Config.Data.Bulletins)
	catalog, err := bulletins.Load(manifest)
	if err != nil {
		return apierrors.NewParsingError(manifest, err)
	}
	a.Logger.InfoContext(ctx, "Bulletins loaded",
		slog.String("manifest", manifest),
		slog.Int("count", catalog.Len()))
	a.Bulletins = catalog

	return nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() {
	builder := views.NewBuilder(a.Registry, views.OptionsFrom(a.Config.Views))

	a.DashboardService = services.NewDashboardService(a.Registry, a.Bulletins, builder, a.Metrics, a.Logger)
	a.HealthService = services.NewHealthService(config.AppVersion, BuildTime, a.Registry, a.Bulletins, a.Logger)
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// RequestID → RealIP → OTel → Logger → Recoverer → Timeout
	r.Use(customMiddleware.RequestID)
	r.Use(middleware.RealIP)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
	if err != nil {
		a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
	} else {
		r.Use(otelMiddleware.Handler)
	}

	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(a.ErrorHandler.Recoverer)
	r.Use(middleware.Timeout(a.Config.Server.RequestTimeout))
	r.Use(middleware.StripSlashes)

	r.Use(customMiddleware.NewSecurityHeaders(a.Config.Logging.Development).Handler)

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
			AllowedOrigins: a.Config.Security.AllowedOrigins,
			Logger:         a.Logger,
		}))
	}

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.ErrorHandler,
			a.Logger,
		).Handler)
	}

	if a.Config.Server.Compression {
		r.Use(customMiddleware.Compress(compressionLevel, a.Logger))
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.setupAPIRoutes(r)

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle(config.MetricsEndpoint, a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
	r.Mount(config.HealthEndpoint, healthHandler.Routes())
	r.Get("/api/version", healthHandler.Version)

	documentsDir := filepath.Dir(a.Config.Data.DataFile(a.Config.Data.Bulletins))

	r.Route(config.APIBasePath, func(r chi.Router) {
		dashboardHandler := handlers.NewDashboardHandler(a.DashboardService, a.Logger, a.ErrorHandler)
		r.Mount("/", dashboardHandler.Routes())

		bulletinHandler := handlers.NewBulletinHandler(a.DashboardService, documentsDir, a.Logger, a.ErrorHandler)
		r.Mount("/bulletins", bulletinHandler.Routes())
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Address(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(a.Logger.Handler(), slog.LevelWarn),
	}
}

// Start starts serving in the background. A listen failure cancels ctx
// through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("address", a.Server.Addr),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			// Signal shutdown through context instead of os.Exit
			cancel()
		}
	}()

	status := a.HealthService.ReadinessCheck(ctx)
	a.Logger.InfoContext(ctx, "Application started",
		slog.String("readiness", status.Status),
		slog.Int("bulletins", a.Bulletins.Len()))

	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return infrastructure.CloseLogFile()
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case sig := <-sigChan:
		a.Logger.InfoContext(ctx, "Received signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Context cancelled")
	}

	return a.Stop(context.Background())
}
