package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"marketdesk/internal/bulletins"
	"marketdesk/internal/registry"
)

// Probe statuses
const (
	StatusOK       = "ok"
	StatusAlive    = "alive"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
)

// HealthService answers the health, readiness and liveness probes from
// the loaded registry and bulletin catalog
type HealthService struct {
	version   string
	buildTime string
	registry  *registry.Registry
	bulletins *bulletins.Catalog
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus is the body of every probe
type HealthStatus struct {
	Status     string                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version"`
	Runtime    *RuntimeInfo               `json:"runtime,omitempty"`
	Components map[string]ComponentHealth `json:"services,omitempty"`
}

// Ready reports whether every component is ready
func (s HealthStatus) Ready() bool {
	return s.Status == StatusReady
}

// ComponentHealth is the readiness of one loaded input
type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Age     string `json:"age,omitempty"`
}

// RuntimeInfo is reported by the liveness probe
type RuntimeInfo struct {
	UptimeSeconds float64 `json:"uptime"`
	GoVersion     string  `json:"go_version"`
	Goroutines    int     `json:"goroutines"`
}

// VersionInfo describes the running build and the data it loaded
type VersionInfo struct {
	Version      string                  `json:"version"`
	BuildTime    string                  `json:"build_time,omitempty"`
	GoVersion    string                  `json:"go_version"`
	OS           string                  `json:"os"`
	Arch         string                  `json:"arch"`
	StartTime    time.Time               `json:"start_time"`
	DataLoadedAt *time.Time              `json:"data_loaded_at,omitempty"`
	Datasets     []registry.DatasetStats `json:"datasets,omitempty"`
}

// NewHealthService creates a new health service. reg and catalog may be
// nil before loading finishes; readiness then fails.
func NewHealthService(version, buildTime string, reg *registry.Registry, catalog *bulletins.Catalog, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		buildTime: buildTime,
		registry:  reg,
		bulletins: catalog,
		startTime: time.Now(),
		logger:    logger.With(slog.String("service", "health")),
	}
}

func (hs *HealthService) status(s string) HealthStatus {
	return HealthStatus{Status: s, Timestamp: time.Now(), Version: hs.version}
}

// HealthCheck always answers ok while the process serves requests
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return hs.status(StatusOK)
}

// ReadinessCheck is ready when the registry holds observations
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := hs.status(StatusReady)
	status.Components = map[string]ComponentHealth{
		"registry":  hs.registryHealth(),
		"bulletins": hs.bulletinHealth(),
	}

	for name, c := range status.Components {
		if c.Status != StatusReady {
			status.Status = StatusNotReady
			hs.logger.WarnContext(ctx, "Readiness check failed",
				slog.String("component", name),
				slog.String("reason", c.Message))
		}
	}
	return status
}

// LivenessCheck reports process runtime figures
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	status := hs.status(StatusAlive)
	status.Runtime = &RuntimeInfo{
		UptimeSeconds: time.Since(hs.startTime).Seconds(),
		GoVersion:     runtime.Version(),
		Goroutines:    runtime.NumGoroutine(),
	}
	return status
}

// Version returns build and data information
func (hs *HealthService) Version() VersionInfo {
	info := VersionInfo{
		Version:   hs.version,
		BuildTime: hs.buildTime,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		StartTime: hs.startTime,
	}
	if hs.registry != nil {
		loaded := hs.registry.LoadedAt()
		info.DataLoadedAt = &loaded
		info.Datasets = hs.registry.Stats()
	}
	return info
}

func (hs *HealthService) registryHealth() ComponentHealth {
	if hs.registry == nil {
		return ComponentHealth{Status: StatusNotReady, Message: "registry not loaded"}
	}

	points, datasets := 0, 0
	for _, st := range hs.registry.Stats() {
		if st.Points > 0 || st.Instruments > 0 {
			datasets++
		}
		points += st.Points
	}
	if datasets == 0 {
		return ComponentHealth{Status: StatusNotReady, Message: "no dataset has observations"}
	}

	return ComponentHealth{
		Status:  StatusReady,
		Message: fmt.Sprintf("%d datasets, %d points", datasets, points),
		Age:     time.Since(hs.registry.LoadedAt()).Round(time.Second).String(),
	}
}

// bulletinHealth is always ready. Without bulletins the active date falls
// back to the latest observation.
func (hs *HealthService) bulletinHealth() ComponentHealth {
	if hs.bulletins == nil || hs.bulletins.Len() == 0 {
		return ComponentHealth{Status: StatusReady, Message: "no bulletins listed"}
	}
	latest, _ := hs.bulletins.Latest()
	return ComponentHealth{
		Status:  StatusReady,
		Message: fmt.Sprintf("%d bulletins, latest %s", hs.bulletins.Len(), latest.ID),
	}
}
