// Package api exposes the extraction control surface over HTTP.
//
//	GET /start/:n       started | still_running
//	GET /active         true | false
//	GET /cancel         cancelled | not_run
//	GET /runs/current   snapshot of the recorded run
//
// Control replies are text/plain; errors use the standard JSON error body.
package api
