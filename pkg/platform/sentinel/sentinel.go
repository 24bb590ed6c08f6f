package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers return
// these (optionally wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store
// - ErrConflict: write lost a race against a concurrent writer
// - ErrAlreadyClaimed: business ownership already transferred to another claim
// - ErrExhausted: identifier sequence space for an issuance date is used up
// - ErrUnavailable: backing store temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrAlreadyClaimed = errors.New("already claimed")
	ErrExhausted      = errors.New("exhausted")
	ErrUnavailable    = errors.New("unavailable")
)
