package registry

import (
	"context"

	"bizintel/pkg/domain"
)

// Store persists business records. Implementations return the sentinel
// package's errors for factual conditions (not found, already claimed) so the
// service can translate them into domain errors.
type Store interface {
	Create(ctx context.Context, b *Business) error
	Get(ctx context.Context, id domain.BusinessID) (*Business, error)
	GetByBIID(ctx context.Context, biID domain.BIID) (*Business, error)
	// Update writes the editable fields. It never writes Claimed or Verified
	// (MarkClaimed is their single writer); implementations overwrite b's
	// flags with the stored values so the caller sees the current state.
	Update(ctx context.Context, b *Business) error
	Delete(ctx context.Context, id domain.BusinessID) error
	List(ctx context.Context) ([]*Business, error)

	// MarkClaimed is the single-writer transition backing claim approval:
	// it sets Claimed and Verified iff the business is not claimed yet.
	// Returns sentinel.ErrAlreadyClaimed when another claim won the race and
	// sentinel.ErrNotFound for unknown ids.
	MarkClaimed(ctx context.Context, id domain.BusinessID) (*Business, error)
}
