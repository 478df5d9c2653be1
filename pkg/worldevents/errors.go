package worldevents

import "errors"

// Sentinel errors for engine construction and lifecycle.
var (
	// ErrNilCatalog indicates New was called without a catalog.
	ErrNilCatalog = errors.New("catalog cannot be nil")

	// ErrAlreadyRunning indicates Start was called on a running engine.
	ErrAlreadyRunning = errors.New("engine already running")

	// ErrNotRunning indicates Stop was called on an engine that was never
	// started.
	ErrNotRunning = errors.New("engine not running")

	// ErrStopped indicates Start was called after Stop. Engines are not
	// restartable.
	ErrStopped = errors.New("engine stopped")
)

// Sentinel errors for control and query calls.
var (
	// ErrAdmissionRejected indicates a triggered event would exceed its
	// type's concurrency cap.
	ErrAdmissionRejected = errors.New("admission rejected")

	// ErrUnknownPort indicates a port ID not present in the catalog.
	ErrUnknownPort = errors.New("unknown port")

	// ErrUnknownRoute indicates a route ID not present in the catalog.
	ErrUnknownRoute = errors.New("unknown route")
)
