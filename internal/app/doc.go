// Package app wires the market desk server together: it loads the dataset
// files and bulletin manifest named by the configuration, builds the
// registry and view services, and serves them through a chi router.
//
// # Initialization Flow
//
//  1. Load configuration (defaults, config file, MARKETDESK_* environment)
//  2. Initialize logging and OpenTelemetry
//  3. Parse every dataset into the series registry
//  4. Load the bulletin catalog
//  5. Create the dashboard and health services
//  6. Set up middleware and routes
//  7. Configure the HTTP server
//
// The registry is immutable once loaded. Picking up new data files means
// restarting the process.
//
// # Graceful Shutdown
//
// Run blocks until SIGINT or SIGTERM, then drains in-flight requests within
// the configured shutdown timeout and flushes telemetry. Initialization
// errors are returned to the caller; the package never calls os.Exit.
package app
