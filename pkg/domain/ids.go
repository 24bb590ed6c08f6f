// Package domain holds typed identifiers and value objects shared across the
// directory core. IDs are distinct types over uuid.UUID so a ClaimID can never
// be passed where a BusinessID is expected.
//
// Construct IDs from external input via the Parse* functions; direct casting
// bypasses validation and belongs only in tests.
package domain

import (
	"github.com/google/uuid"

	dErrors "bizintel/pkg/domain-errors"
)

// BusinessID identifies a business record in the registry. It is registry
// internal and distinct from the public BIID.
type BusinessID uuid.UUID

// ClaimID identifies an ownership claim.
type ClaimID uuid.UUID

// LeadID identifies a stored lead.
type LeadID uuid.UUID

// ReviewID identifies a stored review.
type ReviewID uuid.UUID

// AlertID identifies a derived change alert.
type AlertID uuid.UUID

// VerificationRequestID identifies a detailed-verification request record.
type VerificationRequestID uuid.UUID

// ChangeEventID identifies a detected change event.
type ChangeEventID uuid.UUID

// SubscriptionID identifies a change-alert subscription.
type SubscriptionID uuid.UUID

func NewBusinessID() BusinessID { return BusinessID(uuid.New()) }
func NewClaimID() ClaimID       { return ClaimID(uuid.New()) }
func NewLeadID() LeadID         { return LeadID(uuid.New()) }
func NewReviewID() ReviewID     { return ReviewID(uuid.New()) }
func NewAlertID() AlertID       { return AlertID(uuid.New()) }

func NewVerificationRequestID() VerificationRequestID {
	return VerificationRequestID(uuid.New())
}

func NewChangeEventID() ChangeEventID   { return ChangeEventID(uuid.New()) }
func NewSubscriptionID() SubscriptionID { return SubscriptionID(uuid.New()) }

func (id BusinessID) String() string            { return uuid.UUID(id).String() }
func (id ClaimID) String() string               { return uuid.UUID(id).String() }
func (id LeadID) String() string                { return uuid.UUID(id).String() }
func (id ReviewID) String() string              { return uuid.UUID(id).String() }
func (id AlertID) String() string               { return uuid.UUID(id).String() }
func (id VerificationRequestID) String() string { return uuid.UUID(id).String() }
func (id ChangeEventID) String() string         { return uuid.UUID(id).String() }
func (id SubscriptionID) String() string        { return uuid.UUID(id).String() }

func (id BusinessID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ClaimID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// parseUUID enforces the shared invariant: IDs must be valid, non-nil UUIDs.
func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return parsed, nil
}

// ParseBusinessID constructs a BusinessID from external input.
func ParseBusinessID(s string) (BusinessID, error) {
	parsed, err := parseUUID(s)
	if err != nil {
		return BusinessID{}, err
	}
	return BusinessID(parsed), nil
}

// ParseClaimID constructs a ClaimID from external input.
func ParseClaimID(s string) (ClaimID, error) {
	parsed, err := parseUUID(s)
	if err != nil {
		return ClaimID{}, err
	}
	return ClaimID(parsed), nil
}

// ParseLeadID constructs a LeadID from external input.
func ParseLeadID(s string) (LeadID, error) {
	parsed, err := parseUUID(s)
	if err != nil {
		return LeadID{}, err
	}
	return LeadID(parsed), nil
}

// ParseReviewID constructs a ReviewID from external input.
func ParseReviewID(s string) (ReviewID, error) {
	parsed, err := parseUUID(s)
	if err != nil {
		return ReviewID{}, err
	}
	return ReviewID(parsed), nil
}

// ParseAlertID constructs an AlertID from external input.
func ParseAlertID(s string) (AlertID, error) {
	parsed, err := parseUUID(s)
	if err != nil {
		return AlertID{}, err
	}
	return AlertID(parsed), nil
}

// ParseSubscriptionID constructs a SubscriptionID from external input.
func ParseSubscriptionID(s string) (SubscriptionID, error) {
	parsed, err := parseUUID(s)
	if err != nil {
		return SubscriptionID{}, err
	}
	return SubscriptionID(parsed), nil
}
