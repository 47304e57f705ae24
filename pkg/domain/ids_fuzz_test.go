//go:build go1.18

package domain

import (
	"testing"
	"unicode/utf8"
)

// FuzzParseProjectID checks the trust-boundary invariant: parsing arbitrary
// input never panics and yields either a round-trippable ID or an error.
func FuzzParseProjectID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add("'; DROP TABLE projects;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add("550e8400-e29b-41d4-a716-446655440000\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		projectID, err := ParseProjectID(input)
		if err == nil {
			roundTrip, err2 := ParseProjectID(projectID.String())
			if err2 != nil {
				t.Errorf("valid ID failed round-trip: %v", err2)
			}
			if roundTrip != projectID {
				t.Error("round-trip changed ID value")
			}
		}

		if !utf8.ValidString(input) && err == nil {
			t.Error("non-UTF8 input was accepted")
		}
	})
}

// FuzzParseAllIDs checks that every ID type applies the same validation. A
// type accepting input another rejects would mean one trust boundary is
// weaker than the rest.
func FuzzParseAllIDs(f *testing.F) {
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("")
	f.Add("invalid")

	f.Fuzz(func(t *testing.T, input string) {
		_, errUser := ParseUserID(input)
		_, errCompany := ParseCompanyID(input)
		_, errProject := ParseProjectID(input)
		_, errRole := ParseRoleID(input)
		_, errPolicy := ParsePolicyID(input)
		_, errPermission := ParsePermissionID(input)
		_, errHistory := ParseHistoryID(input)

		accepted := errUser == nil
		for _, err := range []error{errCompany, errProject, errRole, errPolicy, errPermission, errHistory} {
			if (err == nil) != accepted {
				t.Error("inconsistent validation across ID types")
				return
			}
		}
	})
}
