// Package http implements the JSON handlers of the dashboard API.
//
// Handlers are thin: they read the active date selector from the query
// string (date=YYYY-MM-DD or bulletin=<id>), call the dashboard service and
// render the result. Successful responses look like
//
//	{"status": "success", "active": {...}, "data": {...}}
//
// Service errors are mapped with errors.Is to APIErrors and written as RFC
// 7807 problem details by the shared ErrorHandler.
package http
