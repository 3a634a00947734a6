package locale

type Country struct {
	Code      string   // ISO 3166-1 alpha-2, the phone parsing region
	Name      string
	Timezones []string // IANA zones that imply the country
}

var Countries = []Country{
	{
		Code:      "IL",
		Name:      "Israel",
		Timezones: []string{"Asia/Jerusalem", "Israel", "Asia/Tel_Aviv"},
	},
	{
		Code:      "US",
		Name:      "United States",
		Timezones: []string{"America/New_York", "America/Chicago", "America/Denver", "America/Los_Angeles", "US/Eastern", "US/Pacific"},
	},
	{
		Code:      "GB",
		Name:      "United Kingdom",
		Timezones: []string{"Europe/London", "GB"},
	},
	{
		Code:      "SG",
		Name:      "Singapore",
		Timezones: []string{"Asia/Singapore", "Singapore"},
	},
	{
		Code:      "PH",
		Name:      "Philippines",
		Timezones: []string{"Asia/Manila"},
	},
}
