// Package registry owns the canonical business records. Every other feature
// (claims, verification, engagement, monitoring) holds soft references into
// it by BusinessID or BIID and must tolerate those lookups failing.
package registry

import (
	"time"

	"bizintel/pkg/domain"
)

// Business is the canonical directory record.
//
// Invariants:
//   - BIID is assigned exactly once at creation and never changes; deleting
//     the business does not free the BIID for reuse (the issuer's sequence
//     store never rewinds).
//   - Verified implies Claimed. The only path to Verified is claim approval.
type Business struct {
	ID        domain.BusinessID
	BIID      domain.BIID
	Name      string
	Region    string
	Sector    string
	Formality domain.Formality

	// DigitalScore is an optional 0-100 rating; nil means not yet rated.
	DigitalScore *int

	Premium  bool
	Verified bool
	Claimed  bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateParams carries caller-supplied fields for registration. ID, BIID and
// the claim flags are registry-assigned.
type CreateParams struct {
	Name         string
	Region       string
	Sector       string
	Formality    domain.Formality
	DigitalScore *int
	Premium      bool
}

// UpdateParams is a partial update; nil fields are left untouched. BIID and
// the claim flags are deliberately absent: they never move through Update.
type UpdateParams struct {
	Name         *string
	Region       *string
	Sector       *string
	Formality    *domain.Formality
	DigitalScore *int
	Premium      *bool
}

// SearchFilter mirrors the public directory search parameters.
type SearchFilter struct {
	Query    string
	Region   string
	Sector   string
	MinScore *int
	Premium  *bool
	BIID     string
	Verified *bool
}
