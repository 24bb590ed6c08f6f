package claims

import (
	"context"
	"time"

	"bizintel/pkg/domain"
)

// Store persists claims in submission order.
type Store interface {
	Save(ctx context.Context, c *Claim) error
	Get(ctx context.Context, id domain.ClaimID) (*Claim, error)

	// MarkApproved flips the claim's approved flag. The business-level
	// serialization lives in the registry's MarkClaimed; this only records
	// the winning claim.
	MarkApproved(ctx context.Context, id domain.ClaimID, at time.Time) error

	// List returns all claims ordered by submission, pending and approved
	// intermixed; callers partition by Approved.
	List(ctx context.Context) ([]*Claim, error)

	// ListByBusiness returns the claims referencing one business, in
	// submission order.
	ListByBusiness(ctx context.Context, businessID domain.BusinessID) ([]*Claim, error)
}
