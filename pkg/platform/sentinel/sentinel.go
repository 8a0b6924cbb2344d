package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, roster sources and content
// stores return these (optionally wrapped) so services can translate them into
// domain errors.
//
// - ErrNotFound: row, roster entry or blob does not exist
// - ErrConflict: a unique key is already taken (doctor id, wallet binding)
// - ErrUnavailable: an external dependency could not be reached
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
