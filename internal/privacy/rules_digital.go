package privacy

import "regexp"

// digitalRules covers digital-footprint data: geolocation, URLs carrying
// personal data, and social media handles.
func digitalRules() []Rule {
	return []Rule{
		{
			ID:       "GPS_COORD",
			Label:    "GPS coordinates",
			Category: CategoryTechnical,
			Legal:    LegalOrdinary,
			// Four decimals minimum filters out ordinary number pairs
			BaseConfidence:  ConfidenceMedium,
			Pattern:         regexp.MustCompile(`-?(?:[1-8]?\d(?:\.\d{4,})|90(?:\.0+)?)\s*[,;]\s*-?(?:1[0-7]\d|0?\d{1,2})(?:\.\d{4,})\b`),
			PseudonymPrefix: "GPS",
			Enabled:         true,
		},
		{
			ID:              "URL_PII",
			Label:           "URL with personal data",
			Category:        CategoryTechnical,
			Legal:           LegalOrdinary,
			BaseConfidence:  ConfidenceMedium,
			Pattern:         regexp.MustCompile(`(?i)https?://[^\s]+[?&](?:email|user(?:name|_?id)?|name|phone|ssn|token|api_?key|password|secret)=[^\s&]+`),
			PseudonymPrefix: "URL",
			Enabled:         true,
		},
		{
			ID:       "SOCIAL_HANDLE",
			Label:    "Social media handle",
			Category: CategoryContact,
			Legal:    LegalOrdinary,
			// The handle must stand alone: the start anchor or a preceding
			// space/parenthesis is consumed as group 1.
			BaseConfidence:  ConfidenceLow,
			Pattern:         regexp.MustCompile(`(^|[\s(])(@[a-zA-Z_]\w{2,29})\b`),
			Group:           2,
			PseudonymPrefix: "Social",
			Enabled:         true,
		},
	}
}
