/*
errors.go - Centralized error types for the engine boundary

PURPOSE:
  All sentinel errors in one place for consistency and discoverability.
  Calculation packages never return errors: degraded configuration resolves
  to defined numeric fallbacks so a dashboard stays renderable. Errors exist
  only at the I/O boundary (snapshot providers, record parsing, HTTP).

USAGE:
  if errors.Is(err, engine.ErrProjectNotFound) {
      http.Error(w, "unknown project", http.StatusNotFound)
  }
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrProjectNotFound is returned when a referenced project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")

	// ErrContractNotFound is returned when a referenced contract doesn't exist.
	ErrContractNotFound = errors.New("contract not found")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrInvalidRecord is returned when an ingested record cannot be decoded
	// at all. Recoverable field problems degrade with warnings instead.
	ErrInvalidRecord = errors.New("invalid record")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// UnknownReferenceError reports a record pointing at a missing entity.
type UnknownReferenceError struct {
	Kind string // "project", "contract"
	ID   string
}

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("unknown %s reference: %s", e.Kind, e.ID)
}

func (e *UnknownReferenceError) Unwrap() error {
	switch e.Kind {
	case "contract":
		return ErrContractNotFound
	default:
		return ErrProjectNotFound
	}
}

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProjectNotFound) || errors.Is(err, ErrContractNotFound)
}
