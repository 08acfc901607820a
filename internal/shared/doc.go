// Package shared holds helpers used by more than one layer of marketdesk.
//
// The testutil subpackage provides a buffered slog handler so tests can
// assert on structured log output:
//
//	logger, logs := testutil.NewTestLogger(t)
//	svc := services.NewHealthService("dev", "", reg, nil, logger)
//	svc.ReadinessCheck(ctx)
//	testutil.AssertLogContains(t, logs, slog.LevelWarn, "Readiness check failed")
package shared
