package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "marketdesk/internal/errors"
	appmiddleware "marketdesk/internal/middleware"
	"marketdesk/internal/services"
	"marketdesk/internal/views"
)

// maxSeriesWeeks bounds the weeks query parameter of series charts
const maxSeriesWeeks = 520

// DashboardHandler serves the derived views of the active date
type DashboardHandler struct {
	service      DashboardServiceInterface
	params       *appmiddleware.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		params:       appmiddleware.NewQueryParamValidator(logger, errorHandler),
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the view routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/dashboard", h.GetDashboard)
	r.Get("/treasury", h.GetTreasury)
	r.Get("/slopes", h.GetSlopes)
	r.Get("/credit", h.GetCredit)
	r.Get("/watchlist", h.GetWatchlist)
	r.Get("/industries", h.GetIndustries)
	r.Get("/fed-path", h.GetFedPath)
	r.Get("/series/{dataset}/{key}", h.GetSeries)

	return r
}

// selectorFrom reads the active date selector from the query string
func selectorFrom(r *http.Request) services.Selector {
	q := r.URL.Query()
	return services.Selector{
		Date:     q.Get("date"),
		Bulletin: q.Get("bulletin"),
	}
}

// respond writes a successful view response
func respond(w http.ResponseWriter, r *http.Request, active services.ActiveDate, data interface{}) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"active": active,
		"data":   data,
	})
}

// GetDashboard handles GET /api/v1/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	h.logRequest(r, "fetching dashboard")

	d, active, err := h.service.Dashboard(r.Context(), selectorFrom(r))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	respond(w, r, active, d)
}

// GetTreasury handles GET /api/v1/treasury
func (h *DashboardHandler) GetTreasury(w http.ResponseWriter, r *http.Request) {
	h.logRequest(r, "fetching treasury curve")

	v, active, err := h.service.Treasury(r.Context(), selectorFrom(r))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	respond(w, r, active, v)
}

// GetSlopes handles GET /api/v1/slopes
func (h *DashboardHandler) GetSlopes(w http.ResponseWriter, r *http.Request) {
	h.logRequest(r, "fetching curve slopes")

	t, active, err := h.service.Slopes(r.Context(), selectorFrom(r))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	respond(w, r, active, t)
}

// GetCredit handles GET /api/v1/credit
func (h *DashboardHandler) GetCredit(w http.ResponseWriter, r *http.Request) {
	h.logRequest(r, "fetching credit spreads")

	t, active, err := h.service.Credit(r.Context(), selectorFrom(r))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	respond(w, r, active, t)
}

// GetWatchlist handles GET /api/v1/watchlist
func (h *DashboardHandler) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	h.logRequest(r, "fetching watchlist")

	t, active, err := h.service.Watchlist(r.Context(), selectorFrom(r))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	respond(w, r, active, t)
}

// GetIndustries handles GET /api/v1/industries?region=US|EU
func (h *DashboardHandler) GetIndustries(w http.ResponseWriter, r *http.Request) {
	h.logRequest(r, "fetching industries")

	region, ok := h.params.ValidateEnum(w, r, "region", views.Regions, "")
	if !ok {
		return
	}

	tables, active, err := h.service.Industries(r.Context(), selectorFrom(r), region)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	respond(w, r, active, tables)
}

// GetFedPath handles GET /api/v1/fed-path
func (h *DashboardHandler) GetFedPath(w http.ResponseWriter, r *http.Request) {
	h.logRequest(r, "fetching fed path")

	p, active, err := h.service.FedPath(r.Context(), selectorFrom(r))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	respond(w, r, active, p)
}

// GetSeries handles GET /api/v1/series/{dataset}/{key}?weeks=N
func (h *DashboardHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	dataset := chi.URLParam(r, "dataset")
	key := chi.URLParam(r, "key")
	h.logRequest(r, "fetching series chart",
		slog.String("dataset", dataset),
		slog.String("key", key))

	weeks, ok := h.params.ValidateInt(w, r, "weeks", 0, maxSeriesWeeks, 0)
	if !ok {
		return
	}

	chart, active, err := h.service.Series(r.Context(), selectorFrom(r), dataset, key, weeks)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	respond(w, r, active, chart)
}

func (h *DashboardHandler) logRequest(r *http.Request, msg string, attrs ...any) {
	attrs = append(attrs,
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("path", r.URL.Path),
		slog.String("query", r.URL.RawQuery))
	h.logger.InfoContext(r.Context(), msg, attrs...)
}

// handleServiceError maps service errors to API errors
func (h *DashboardHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	h.errorHandler.HandleError(w, r, mapServiceError(r, err))
}

// mapServiceError turns service sentinels into API errors naming the
// offending parameter. Anything else passes through as an internal error.
func mapServiceError(r *http.Request, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidDate):
		return apierrors.ErrValidation("date", "date must be formatted YYYY-MM-DD")
	case errors.Is(err, services.ErrInvalidRegion):
		return apierrors.ErrValidation("region", "region must be US or EU")
	case errors.Is(err, services.ErrInvalidWeeks):
		return apierrors.ErrValidation("weeks", fmt.Sprintf("weeks must be between 0 and %d", maxSeriesWeeks))
	case errors.Is(err, services.ErrBulletinNotFound):
		id := chi.URLParam(r, "id")
		if id == "" {
			id = r.URL.Query().Get("bulletin")
		}
		return apierrors.ErrBulletinNotFound(id)
	case errors.Is(err, services.ErrUnknownDataset):
		return apierrors.ErrDatasetNotFound(chi.URLParam(r, "dataset"))
	case errors.Is(err, services.ErrUnknownInstrument):
		return apierrors.ErrInstrumentNotFound(chi.URLParam(r, "dataset"), chi.URLParam(r, "key"))
	case errors.Is(err, services.ErrNoActiveDate):
		return apierrors.ErrNoActiveDate()
	default:
		return err
	}
}
