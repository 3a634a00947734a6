package sanitizer

import (
	"slices"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var (
	supportedRegions = []string{
		"IL",
		"US",
	}
)

// NormalizePhone converts a phone number to E.164. Local numbers are tried
// against the preferred regions first, then the supported ones. Numbers that
// are not valid in any region are returned trimmed but otherwise untouched.
func NormalizePhone(phone string, preferred ...string) string {
	phone = strings.TrimSpace(phone)

	if phone == "" {
		return ""
	}

	for _, region := range slices.Concat(preferred, supportedRegions) {
		if region == "" {
			continue
		}
		parsedNumber, err := phonenumbers.Parse(phone, region)
		if err == nil && phonenumbers.IsValidNumber(parsedNumber) {
			return phonenumbers.Format(parsedNumber, phonenumbers.E164)
		}
	}
	return phone
}
