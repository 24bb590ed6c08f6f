package monitor

import (
	"strconv"
	"time"

	"bizintel/internal/registry"
	"bizintel/pkg/domain"
)

// differ turns two observations of one business into change events.
type differ struct {
	policy ScorePolicy
}

// diff compares the previous snapshot with the current record. A nil prev
// means the business is new and yields a single synthetic new-business event.
func (d differ) diff(prev, curr *registry.Business, at time.Time) []*ChangeEvent {
	if prev == nil {
		return []*ChangeEvent{d.event(curr, domain.ChangeOther, "", "registered", significanceNewBusiness, true, at)}
	}

	var out []*ChangeEvent

	if scoreChanged(prev.DigitalScore, curr.DigitalScore) {
		sig := significanceInitialRating
		if prev.DigitalScore != nil && curr.DigitalScore != nil {
			sig = d.policy.ScoreDelta(*prev.DigitalScore, *curr.DigitalScore)
		}
		out = append(out, d.event(curr, domain.ChangeDigitalScore,
			scoreString(prev.DigitalScore), scoreString(curr.DigitalScore), sig, false, at))
	}
	if prev.Region != curr.Region {
		out = append(out, d.event(curr, domain.ChangeRegion,
			prev.Region, curr.Region, d.policy.Fixed(domain.ChangeRegion), false, at))
	}
	if prev.Sector != curr.Sector {
		out = append(out, d.event(curr, domain.ChangeSector,
			prev.Sector, curr.Sector, d.policy.Fixed(domain.ChangeSector), false, at))
	}
	if prev.Premium != curr.Premium {
		out = append(out, d.event(curr, domain.ChangePremium,
			strconv.FormatBool(prev.Premium), strconv.FormatBool(curr.Premium),
			d.policy.Fixed(domain.ChangePremium), false, at))
	}
	if prev.Verified != curr.Verified {
		out = append(out, d.event(curr, domain.ChangeVerification,
			strconv.FormatBool(prev.Verified), strconv.FormatBool(curr.Verified),
			d.policy.Fixed(domain.ChangeVerification), false, at))
	}
	if prev.Name != curr.Name {
		out = append(out, d.event(curr, domain.ChangeOther,
			prev.Name, curr.Name, d.policy.Fixed(domain.ChangeOther), false, at))
	}
	if prev.Formality != curr.Formality {
		out = append(out, d.event(curr, domain.ChangeOther,
			string(prev.Formality), string(curr.Formality),
			d.policy.Fixed(domain.ChangeOther), false, at))
	}
	return out
}

// removal records a business disappearing from the registry.
func (d differ) removal(prev *registry.Business, at time.Time) *ChangeEvent {
	return d.event(prev, domain.ChangeOther, "registered", "removed",
		d.policy.Fixed(domain.ChangeOther), false, at)
}

func (d differ) event(b *registry.Business, t domain.ChangeType, oldVal, newVal string, sig int, isNew bool, at time.Time) *ChangeEvent {
	return &ChangeEvent{
		ID:           domain.NewChangeEventID(),
		BusinessID:   b.ID,
		BusinessName: b.Name,
		ChangeType:   t,
		OldValue:     oldVal,
		NewValue:     newVal,
		Significance: sig,
		Severity:     domain.SeverityForSignificance(sig),
		NewBusiness:  isNew,
		DetectedAt:   at,
	}
}

func scoreChanged(a, b *int) bool {
	if a == nil && b == nil {
		return false
	}
	if a == nil || b == nil {
		return true
	}
	return *a != *b
}

func scoreString(s *int) string {
	if s == nil {
		return "unrated"
	}
	return strconv.Itoa(*s)
}
