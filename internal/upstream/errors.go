// Package upstream talks to the agency API that owns groups, the
// permission catalog, and actor grants. Nothing here is retried
// automatically; retry is always an explicit user action.
package upstream

import "errors"

// Sentinel errors for the editor's failure taxonomy. Handlers map these to
// user-facing problem responses.
var (
	// ErrCatalogUnavailable means the catalog or actor-grants fetch failed;
	// the editor cannot initialize.
	ErrCatalogUnavailable = errors.New("upstream: catalog unavailable")
	// ErrGroupFetch means the group snapshot could not be loaded; the
	// editor starts from an empty selection.
	ErrGroupFetch = errors.New("upstream: group fetch failed")
	// ErrPersist means the computed permission set was rejected or the
	// write failed; the submitted selection must be retained for retry.
	ErrPersist = errors.New("upstream: persist failed")
)
