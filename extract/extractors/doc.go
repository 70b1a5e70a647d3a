// Package extractors holds the sample extractors shipped with the service.
//
// Both simulate slow I/O with configurable delays and keep their own typed
// per-run state. Delays honor the hook context, so stopping the service
// aborts them.
package extractors
