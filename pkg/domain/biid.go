package domain

import (
	"fmt"
	"strings"
	"time"

	dErrors "bizintel/pkg/domain-errors"
)

// BIID is the public Business Intelligence identifier in the fixed shape
// BIZ-TZ-YYYYMMDD-XXXX. It is assigned exactly once at registration, is
// immutable afterwards, and is never reused even if the business is deleted.
//
// Invariant: a BIID value always satisfies the shape and calendar checks below.
// Construct via ParseBIID at trust boundaries or FormatBIID at issuance;
// direct casting bypasses validation.
type BIID string

const (
	biidPrefix  = "BIZ-TZ"
	biidDateLen = 8
	biidSeqLen  = 4

	// MaxDailySequence bounds same-day issuances; the token component is a
	// zero-padded value in [1, 9999].
	MaxDailySequence = 9999
)

// FormatBIID builds a BIID from an issuance date and a same-day sequence
// number. The caller (the issuer) owns sequence allocation; this function
// only enforces the bounds.
func FormatBIID(date time.Time, seq int) (BIID, error) {
	if seq < 1 || seq > MaxDailySequence {
		return "", dErrors.New(dErrors.CodeExhausted,
			fmt.Sprintf("sequence %d outside [1, %d]", seq, MaxDailySequence))
	}
	return BIID(fmt.Sprintf("%s-%s-%04d", biidPrefix, date.Format("20060102"), seq)), nil
}

// ParseBIID validates a candidate BI ID. The check is purely syntactic:
// fixed shape plus a real calendar date. Whether the ID resolves to a
// business is the verification service's concern, not this function's.
func ParseBIID(s string) (BIID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "BI ID cannot be empty")
	}
	parts := strings.Split(s, "-")
	if len(parts) != 4 || parts[0] != "BIZ" || parts[1] != "TZ" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "BI ID must match BIZ-TZ-YYYYMMDD-XXXX")
	}
	datePart, seqPart := parts[2], parts[3]
	if len(datePart) != biidDateLen || !allDigits(datePart) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "BI ID date component must be YYYYMMDD")
	}
	if _, err := time.Parse("20060102", datePart); err != nil {
		return "", dErrors.New(dErrors.CodeInvalidInput, "BI ID date component is not a calendar date")
	}
	if len(seqPart) != biidSeqLen || !allDigits(seqPart) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "BI ID token component must be four digits")
	}
	if seqPart == "0000" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "BI ID token component starts at 0001")
	}
	return BIID(s), nil
}

func (b BIID) String() string { return string(b) }

func (b BIID) IsNil() bool { return b == "" }

// IssuedOn extracts the issuance date component. Callers must only invoke
// this on values constructed through ParseBIID or FormatBIID.
func (b BIID) IssuedOn() (time.Time, error) {
	parts := strings.Split(string(b), "-")
	if len(parts) != 4 {
		return time.Time{}, dErrors.New(dErrors.CodeInvalidInput, "malformed BI ID")
	}
	return time.Parse("20060102", parts[2])
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
