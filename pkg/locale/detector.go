// Package locale maps a community's configured time zone to the country
// used as the default region for local phone numbers.
package locale

import "strings"

// RegionForTimezone returns the country code for tz, or "" when tz belongs to
// no known country.
func RegionForTimezone(tz string) string {
	if c := CountryForTimezone(tz); c != nil {
		return c.Code
	}
	return ""
}

func CountryForTimezone(tz string) *Country {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return nil
	}

	for i := range Countries {
		for _, zone := range Countries[i].Timezones {
			if strings.EqualFold(tz, zone) {
				return &Countries[i]
			}
		}
	}
	return nil
}
