package monitor

import "bizintel/pkg/domain"

// Significance weights per change type. Digital score moves scale with the
// magnitude of the move; the rest are fixed because the field either flipped
// or it did not.
const (
	scoreBase               = 30
	significanceVerify      = 90
	significancePremium     = 70
	significanceRelocation  = 35
	significanceOther       = 25
	significanceNewBusiness = 25

	// First rating on a previously unrated business has no delta to scale by.
	significanceInitialRating = 30
)

// ScorePolicy assigns a 0-100 significance to a detected change and bands it
// into a severity.
type ScorePolicy struct{}

// ScoreDelta scores a digital-score move: base 30 plus the absolute delta,
// clamped to 100. A 50-point jump lands at 80 (critical), a 35-point one at
// 65 (high), a small 5-point wobble at 35 (low).
func (ScorePolicy) ScoreDelta(oldScore, newScore int) int {
	delta := newScore - oldScore
	if delta < 0 {
		delta = -delta
	}
	s := scoreBase + delta
	if s > 100 {
		s = 100
	}
	return s
}

// Fixed returns the flat significance for non-score change types.
func (ScorePolicy) Fixed(t domain.ChangeType) int {
	switch t {
	case domain.ChangeVerification:
		return significanceVerify
	case domain.ChangePremium:
		return significancePremium
	case domain.ChangeRegion, domain.ChangeSector:
		return significanceRelocation
	default:
		return significanceOther
	}
}
