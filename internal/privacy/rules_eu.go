package privacy

import (
	"regexp"

	"github.com/MaitreJV/pseudoshield/internal/validate"
)

// euRules covers jurisdiction-specific identifiers for BE/FR/LU and the
// cross-border IBAN family.
func euRules() []Rule {
	return []Rule{
		{
			ID:             "NISS_BE",
			Label:          "Belgian national register number",
			Category:       CategoryIdentity,
			Legal:          LegalSensitive,
			BaseConfidence: ConfidenceHigh,
			Pattern:        regexp.MustCompile(`\b(\d{2})[.\s]?(\d{2})[.\s]?(\d{2})[.\s-]?(\d{3})[.\s]?(\d{2})\b`),
			Validator:      validate.NISS,
			// Fictitious numbers in legal templates fail the checksum but are
			// still privacy-sensitive in context: keep them at medium.
			SoftValidation:  true,
			PseudonymPrefix: "NISS",
			Enabled:         true,
		},
		{
			ID:              "INAMI_BE",
			Label:           "Belgian professional register number",
			Category:        CategoryIdentity,
			Legal:           LegalOrdinary,
			BaseConfidence:  ConfidenceHigh,
			Pattern:         regexp.MustCompile(`\b\d{6}[.\s-]?\d{2}[.\s-]?\d{3}\b`),
			Validator:       validate.INAMI,
			PseudonymPrefix: "INAMI",
			Enabled:         true,
		},
		{
			ID:              "IBAN_BE",
			Label:           "Belgian IBAN",
			Category:        CategoryFinancial,
			Legal:           LegalOrdinary,
			BaseConfidence:  ConfidenceHigh,
			Pattern:         regexp.MustCompile(`(?i)\bBE\d{2}[\s.\-]?\d{4}[\s.\-]?\d{4}[\s.\-]?\d{4}\b`),
			Validator:       validate.IBAN,
			PseudonymPrefix: "IBAN",
			Enabled:         true,
		},
		{
			ID:              "IBAN_FR",
			Label:           "French IBAN",
			Category:        CategoryFinancial,
			Legal:           LegalOrdinary,
			BaseConfidence:  ConfidenceHigh,
			Pattern:         regexp.MustCompile(`(?i)\bFR\d{2}[\s.\-]?\d{4}[\s.\-]?\d{4}[\s.\-]?\d{4}[\s.\-]?\d{4}[\s.\-]?\d{3}\b`),
			Validator:       validate.IBAN,
			PseudonymPrefix: "IBAN",
			Enabled:         true,
		},
		{
			ID:              "IBAN_LU",
			Label:           "Luxembourgish IBAN",
			Category:        CategoryFinancial,
			Legal:           LegalOrdinary,
			BaseConfidence:  ConfidenceHigh,
			Pattern:         regexp.MustCompile(`(?i)\bLU\d{2}[\s.\-]?\d{3}[\s.\-]?\d{13}\b`),
			Validator:       validate.IBAN,
			PseudonymPrefix: "IBAN",
			Enabled:         true,
		},
		{
			ID:              "IBAN_DE",
			Label:           "German IBAN",
			Category:        CategoryFinancial,
			Legal:           LegalOrdinary,
			BaseConfidence:  ConfidenceHigh,
			Pattern:         regexp.MustCompile(`(?i)\bDE\d{2}[\s.\-]?\d{4}[\s.\-]?\d{4}[\s.\-]?\d{4}[\s.\-]?\d{4}[\s.\-]?\d{2}\b`),
			Validator:       validate.IBAN,
			PseudonymPrefix: "IBAN",
			Enabled:         true,
		},
		{
			ID:              "IBAN_NL",
			Label:           "Dutch IBAN",
			Category:        CategoryFinancial,
			Legal:           LegalOrdinary,
			BaseConfidence:  ConfidenceHigh,
			Pattern:         regexp.MustCompile(`(?i)\bNL\d{2}[\s.\-]?[A-Z]{4}[\s.\-]?\d{4}[\s.\-]?\d{4}[\s.\-]?\d{2}\b`),
			Validator:       validate.IBAN,
			PseudonymPrefix: "IBAN",
			Enabled:         true,
		},
		{
			ID:              "IBAN_IT",
			Label:           "Italian IBAN",
			Category:        CategoryFinancial,
			Legal:           LegalOrdinary,
			BaseConfidence:  ConfidenceHigh,
			Pattern:         regexp.MustCompile(`(?i)\bIT\d{2}[\s.\-]?[A-Z]\d{3}[\s.\-]?\d{4}[\s.\-]?\d{4}[\s.\-]?\d{4}[\s.\-]?\d{4}[\s.\-]?\d{3}\b`),
			Validator:       validate.IBAN,
			PseudonymPrefix: "IBAN",
			Enabled:         true,
		},
		{
			ID:              "IBAN_ES",
			Label:           "Spanish IBAN",
			Category:        CategoryFinancial,
			Legal:           LegalOrdinary,
			BaseConfidence:  ConfidenceHigh,
			Pattern:         regexp.MustCompile(`(?i)\bES\d{2}[\s.\-]?\d{4}[\s.\-]?\d{4}[\s.\-]?\d{4}[\s.\-]?\d{4}[\s.\-]?\d{4}\b`),
			Validator:       validate.IBAN,
			PseudonymPrefix: "IBAN",
			Enabled:         true,
		},
		{
			ID:              "TVA_BE",
			Label:           "Belgian VAT number",
			Category:        CategoryFinancial,
			Legal:           LegalOrdinary,
			BaseConfidence:  ConfidenceHigh,
			Pattern:         regexp.MustCompile(`(?i)\bBE\s?0\d{3}[\s.]?\d{3}[\s.]?\d{3}\b`),
			PseudonymPrefix: "TVA",
			Enabled:         true,
		},
		{
			ID:              "TVA_FR",
			Label:           "French VAT number",
			Category:        CategoryFinancial,
			Legal:           LegalOrdinary,
			BaseConfidence:  ConfidenceHigh,
			Pattern:         regexp.MustCompile(`(?i)\bFR\s?\d{2}\s?\d{3}\s?\d{3}\s?\d{3}\b`),
			PseudonymPrefix: "TVA",
			Enabled:         true,
		},
		{
			ID:              "TVA_LU",
			Label:           "Luxembourgish VAT number",
			Category:        CategoryFinancial,
			Legal:           LegalOrdinary,
			BaseConfidence:  ConfidenceHigh,
			Pattern:         regexp.MustCompile(`(?i)\bLU\s?\d{8}\b`),
			PseudonymPrefix: "TVA",
			Enabled:         true,
		},
		{
			ID:              "ADRESSE_EU",
			Label:           "Postal address (BE/FR)",
			Category:        CategoryAddress,
			Legal:           LegalOrdinary,
			BaseConfidence:  ConfidenceMedium,
			Pattern:         regexp.MustCompile(`(?i)(?:rue|avenue|boulevard|chaussée|chaussee|place|allée|allee|chemin|impasse|passage|square|quai|route)\s+[\w\sÀ-ÿ'-]+(?:,?\s*\d{1,4}\s*[a-zA-Z]?)?\s*,?\s*\d{4,5}\s+[\wÀ-ÿ\s'-]+`),
			PseudonymPrefix: "Adresse",
			Enabled:         true,
		},
		{
			ID:              "CI_BE",
			Label:           "Belgian identity card number",
			Category:        CategoryIdentity,
			Legal:           LegalOrdinary,
			BaseConfidence:  ConfidenceHigh,
			Pattern:         regexp.MustCompile(`\b\d{3}-\d{7}-\d{2}\b`),
			PseudonymPrefix: "CI",
			Enabled:         true,
		},
		{
			ID:              "BCE_BE",
			Label:           "Belgian enterprise number (BCE)",
			Category:        CategoryFinancial,
			Legal:           LegalOrdinary,
			BaseConfidence:  ConfidenceHigh,
			Pattern:         regexp.MustCompile(`(?i)(?:BCE|banque[\s-]?carrefour|entreprise|n°\s?d'entreprise)\s*:?\s*(0\d{3}[.\s]?\d{3}[.\s]?\d{3})\b`),
			Group:           1,
			PseudonymPrefix: "BCE",
			Enabled:         true,
		},
		{
			ID:              "PLAQUE_BE",
			Label:           "Belgian vehicle registration plate",
			Category:        CategoryIdentity,
			Legal:           LegalOrdinary,
			BaseConfidence:  ConfidenceMedium,
			Pattern:         regexp.MustCompile(`\b1-[A-Z]{3}-\d{3}\b`),
			PseudonymPrefix: "Plaque",
			Enabled:         true,
		},
	}
}
