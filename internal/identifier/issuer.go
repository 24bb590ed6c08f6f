// Package identifier issues and validates Business Intelligence IDs.
// It is a leaf: the registry depends on it, never the other way around.
package identifier

import (
	"context"
	"errors"
	"time"

	"bizintel/pkg/domain"
	dErrors "bizintel/pkg/domain-errors"
	"bizintel/pkg/platform/sentinel"
)

// SequenceStore allocates same-day sequence numbers. Implementations must be
// safe for concurrent use and must never hand out the same number twice for
// one date key, even across process restarts where the backend allows it.
type SequenceStore interface {
	// Next returns the next unused sequence for the given date key
	// (YYYYMMDD). Returns sentinel.ErrExhausted once the space is used up;
	// a failed allocation must not consume a number.
	Next(ctx context.Context, dateKey string) (int, error)
}

// Issuer mints BI IDs with a deterministic date component and a
// collision-free token component.
type Issuer struct {
	seq SequenceStore
}

func NewIssuer(seq SequenceStore) *Issuer {
	return &Issuer{seq: seq}
}

// Issue mints a BI ID for the given issuance date. The only failure mode
// besides store errors is exhaustion of the date's token space, surfaced as
// CodeExhausted.
func (i *Issuer) Issue(ctx context.Context, date time.Time) (domain.BIID, error) {
	dateKey := date.Format("20060102")
	seq, err := i.seq.Next(ctx, dateKey)
	if err != nil {
		if errors.Is(err, sentinel.ErrExhausted) {
			return "", dErrors.Wrap(dErrors.CodeExhausted,
				"BI ID space exhausted for "+dateKey, err)
		}
		return "", dErrors.Wrap(dErrors.CodeInternal, "allocate BI ID sequence", err)
	}
	return domain.FormatBIID(date, seq)
}

// Result reports the outcome of a syntactic BI ID check.
type Result struct {
	Valid  bool
	Reason string
}

// Validate performs the pure format check. A syntactically valid ID that does
// not resolve to a business is the verification service's condition to report,
// not this one's.
func Validate(candidate string) Result {
	if _, err := domain.ParseBIID(candidate); err != nil {
		var de *dErrors.Error
		if errors.As(err, &de) {
			return Result{Valid: false, Reason: de.Message}
		}
		return Result{Valid: false, Reason: "invalid BI ID"}
	}
	return Result{Valid: true}
}
