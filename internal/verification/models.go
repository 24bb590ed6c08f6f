// Package verification answers "is this BI ID valid and whose is it" for
// third parties (banks, partners) and records detailed-verification requests
// for audit.
package verification

import (
	"time"

	"bizintel/internal/registry"
	"bizintel/pkg/domain"
)

// FailureReason distinguishes the two ways a verification can fail. Callers
// render "bad input" and "not found" differently, so the distinction is part
// of the contract.
type FailureReason string

const (
	ReasonNone      FailureReason = ""
	ReasonMalformed FailureReason = "malformed"
	ReasonUnknown   FailureReason = "unknown"
)

// Result is the outcome of a BI ID verification.
type Result struct {
	Valid    bool
	Business *registry.Business

	// Status is "verified" or "registered" for valid results, mirroring the
	// public verification response.
	Status string

	VerificationDate time.Time
	Reason           FailureReason
	Message          string
}

// Request is the auditable record of who asked for detailed verification and
// why. It never mutates business state.
type Request struct {
	ID               domain.VerificationRequestID
	BIID             domain.BIID
	RequesterName    string
	RequesterContact string
	Purpose          string

	// BusinessName is denormalized at request time when the BI ID resolves;
	// empty otherwise.
	BusinessName string

	RequestedAt time.Time
}
