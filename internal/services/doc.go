// Package services sits between the HTTP handlers and the market data core.
//
// DashboardService resolves the active date of a request (an explicit date,
// a bulletin id or the latest bulletin) and builds the derived views for it
// from the shared registry. Every view is recomputed per call; nothing is
// cached between requests.
//
// HealthService reports liveness, readiness and version information.
// Readiness requires that at least one dataset loaded observations.
//
// Services return the sentinel errors in errors.go; handlers map them to
// HTTP problems with errors.Is.
package services
