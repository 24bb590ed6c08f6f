// Package claims manages the ownership-claim workflow: anyone may assert
// ownership of a listing, an admin approves at most one claim per business,
// and approval is what flips the business to claimed and verified.
package claims

import (
	"time"

	"bizintel/pkg/domain"
)

// Claim is an assertion of ownership over a business, pending approval.
// BusinessID is a soft reference: the business may have been deleted since
// submission, in which case approval fails but the record remains.
type Claim struct {
	ID         domain.ClaimID
	BusinessID domain.BusinessID
	OwnerName  string
	Contact    string
	Approved   bool

	SubmittedAt time.Time
	ApprovedAt  *time.Time
}
