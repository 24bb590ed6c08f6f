package domain

import dErrors "bizintel/pkg/domain-errors"

// Formality classifies how formally a business operates.
type Formality string

const (
	FormalityFormal     Formality = "Formal"
	FormalityInformal   Formality = "Informal"
	FormalitySemiFormal Formality = "Semi-formal"
)

var validFormalities = map[Formality]bool{
	FormalityFormal:     true,
	FormalityInformal:   true,
	FormalitySemiFormal: true,
}

// ParseFormality constructs a Formality from external input. Empty input is
// allowed: formality is optional on a business record.
func ParseFormality(s string) (Formality, error) {
	if s == "" {
		return "", nil
	}
	f := Formality(s)
	if !validFormalities[f] {
		return "", dErrors.New(dErrors.CodeValidation, "invalid formality: "+s)
	}
	return f, nil
}

func (f Formality) String() string { return string(f) }

// ChangeType classifies which business field a change event touched.
type ChangeType string

const (
	ChangeDigitalScore ChangeType = "digital_score"
	ChangeRegion       ChangeType = "region"
	ChangeSector       ChangeType = "sector"
	ChangePremium      ChangeType = "premium"
	ChangeVerification ChangeType = "verification"
	ChangeOther        ChangeType = "other"
)

func (c ChangeType) String() string { return string(c) }

// Severity bands a change alert by its significance score.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Severity thresholds over the 0-100 significance scale.
const (
	SignificanceCritical = 80
	SignificanceHigh     = 60
	SignificanceMedium   = 40
)

// SeverityForSignificance bands a significance score: >=80 critical,
// >=60 high, >=40 medium, low otherwise.
func SeverityForSignificance(significance int) Severity {
	switch {
	case significance >= SignificanceCritical:
		return SeverityCritical
	case significance >= SignificanceHigh:
		return SeverityHigh
	case significance >= SignificanceMedium:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func (s Severity) String() string { return string(s) }

// EngagementAction is a tracked interaction with a listing.
type EngagementAction string

const (
	ActionView  EngagementAction = "view"
	ActionClick EngagementAction = "click"
)

// ParseEngagementAction constructs an EngagementAction from external input.
func ParseEngagementAction(s string) (EngagementAction, error) {
	switch EngagementAction(s) {
	case ActionView, ActionClick:
		return EngagementAction(s), nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "action must be view or click")
	}
}

func (a EngagementAction) String() string { return string(a) }

// TrendDirection is the coarse direction of a change-type's frequency across
// observation windows.
type TrendDirection string

const (
	TrendUp   TrendDirection = "up"
	TrendDown TrendDirection = "down"
	TrendFlat TrendDirection = "flat"
)

func (t TrendDirection) String() string { return string(t) }
