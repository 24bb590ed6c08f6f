//go:build go1.18

package domain

import (
	"testing"
	"unicode/utf8"
)

// FuzzParseBIID tests that parsing never panics on arbitrary input and that
// accepted values round-trip unchanged.
func FuzzParseBIID(f *testing.F) {
	f.Add("")
	f.Add("BIZ-TZ-20240101-0001")
	f.Add("BIZ-TZ-20240101-0000")
	f.Add("BIZ-TZ-99999999-9999")
	f.Add("not-a-biid")
	f.Add("BIZ-TZ-20240101-0001\x00suffix")
	f.Add(string([]byte{0x00, 0x01, 0x02}))

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseBIID(input)
		if err != nil {
			return
		}
		// Accepted values must round-trip.
		roundTrip, err2 := ParseBIID(id.String())
		if err2 != nil {
			t.Errorf("valid BIID failed round-trip: %v", err2)
		}
		if roundTrip != id {
			t.Error("round-trip changed BIID value")
		}
		// The date component must be recoverable from any accepted value.
		if _, err := id.IssuedOn(); err != nil {
			t.Errorf("accepted BIID has unreadable date: %v", err)
		}
		if !utf8.ValidString(input) {
			t.Error("non-UTF8 input was accepted")
		}
	})
}
