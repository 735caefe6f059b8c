package privacy

import (
	"regexp"

	"github.com/MaitreJV/pseudoshield/internal/validate"
)

// Courtesy titles preceding a proper name (optional dot for Dr./Pr./Prof.)
const civilities = `(?:M\.|Mme|Mlle|Maître|Maitre|Me|Mr\.?|Mrs\.?|Ms\.?|Dr\.?|Pr\.?|Prof\.?)`

// Single-word legal/epistolary contexts preceding a name
const nameContexts = `(?:Nom|Prénom|Prenom|Client|Partie|Requérant|Requerant|Défendeur|Defendeur|Demandeur|Plaignant|Intimé|Intime|Appelant|Signataire|Représenté|Represente|Bénéficiaire|Beneficiaire|Destinataire|Expéditeur|Expediteur|Patient|Médecin|Medecin|Avocat|Notaire|Juge|soussigné|soussignée|soussigne|dénommé|dénommée|denomme|Cher|Chère|Chere)`

// Multi-word contexts preceding a name
const multiContexts = `(?:représenté(?:e)?\s+par|represente(?:e)?\s+par|ci-après(?:\s+(?:dénommé|dénommée|denomme))?|ci-apres(?:\s+denomme)?)`

// Belgian/French/Dutch name particles
const particles = `(?:Van\s+den|Van\s+de|Van\s+der|Van't|Van|Den|De\s+la|De\s+le|Du|De|Le|La|D')`

// Capitalized word group forming a proper name
const properName = `[A-ZÀ-Ÿ][a-zà-ÿ]+(?:[\s\-][A-ZÀ-Ÿ][a-zà-ÿ]+)*`

// genericRules covers cross-jurisdiction identifiers: contact details,
// technical identifiers, payment cards, and proper-name heuristics. The
// heuristics data drives the consecutive-name confidence adjuster.
func genericRules(h *NameHeuristics) []Rule {
	return []Rule{
		{
			ID:              "EMAIL",
			Label:           "Email address",
			Category:        CategoryContact,
			Legal:           LegalOrdinary,
			BaseConfidence:  ConfidenceHigh,
			Pattern:         regexp.MustCompile(`\b[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}\b`),
			PseudonymPrefix: "Email",
			Enabled:         true,
		},
		{
			ID:              "TEL_BE",
			Label:           "Belgian phone number",
			Category:        CategoryContact,
			Legal:           LegalOrdinary,
			BaseConfidence:  ConfidenceHigh,
			Pattern:         regexp.MustCompile(`(?:\+32|0032)[\s.]?\(?\d{1,3}\)?[\s./\-]?\d{2}[\s./\-]?\d{2}[\s./\-]?\d{2}\b`),
			PseudonymPrefix: "Tel",
			Enabled:         true,
		},
		{
			ID:              "TEL_BE_LOCAL",
			Label:           "Belgian phone number (local)",
			Category:        CategoryContact,
			Legal:           LegalOrdinary,
			BaseConfidence:  ConfidenceHigh,
			Pattern:         regexp.MustCompile(`\b0\d{1,3}[\s./\-]\d{2,3}[\s./\-]?\d{2}[\s./\-]?\d{2}\b`),
			PseudonymPrefix: "Tel",
			Enabled:         true,
		},
		{
			ID:              "TEL_FR",
			Label:           "French phone number",
			Category:        CategoryContact,
			Legal:           LegalOrdinary,
			BaseConfidence:  ConfidenceHigh,
			Pattern:         regexp.MustCompile(`(?:\+33|0033)[\s.]?\(?\d\)?[\s./\-]?\d{2}[\s./\-]?\d{2}[\s./\-]?\d{2}[\s./\-]?\d{2}\b`),
			PseudonymPrefix: "Tel",
			Enabled:         true,
		},
		{
			ID:              "TEL_INT",
			Label:           "International phone number",
			Category:        CategoryContact,
			Legal:           LegalOrdinary,
			BaseConfidence:  ConfidenceMedium,
			Pattern:         regexp.MustCompile(`\+\d{1,3}[\s.\-]?\(?\d{1,4}\)?[\s.\-]?\d{2,4}[\s.\-]?\d{2,4}[\s.\-]?\d{2,4}\b`),
			PseudonymPrefix: "Tel",
			Enabled:         true,
		},
		{
			ID:              "DATE_NAISSANCE",
			Label:           "Birth date",
			Category:        CategoryIdentity,
			Legal:           LegalOrdinary,
			BaseConfidence:  ConfidenceMedium,
			Pattern:         regexp.MustCompile(`\b(?:0[1-9]|[12]\d|3[01])[/.\-](?:0[1-9]|1[0-2])[/.\-](?:19|20)\d{2}\b`),
			PseudonymPrefix: "Date",
			Enabled:         true,
		},
		{
			ID:              "IPV4",
			Label:           "IPv4 address",
			Category:        CategoryTechnical,
			Legal:           LegalOrdinary,
			BaseConfidence:  ConfidenceHigh,
			Pattern:         regexp.MustCompile(`\b(?:25[0-5]|2[0-4]\d|[01]?\d\d?)\.(?:25[0-5]|2[0-4]\d|[01]?\d\d?)\.(?:25[0-5]|2[0-4]\d|[01]?\d\d?)\.(?:25[0-5]|2[0-4]\d|[01]?\d\d?)\b`),
			PseudonymPrefix: "IP",
			Enabled:         true,
		},
		{
			ID:              "IPV6",
			Label:           "IPv6 address",
			Category:        CategoryTechnical,
			Legal:           LegalOrdinary,
			BaseConfidence:  ConfidenceHigh,
			Pattern:         regexp.MustCompile(`\b(?:[0-9a-fA-F]{1,4}:){7}[0-9a-fA-F]{1,4}\b`),
			PseudonymPrefix: "IP",
			Enabled:         true,
		},
		{
			ID:              "CB",
			Label:           "Payment card number",
			Category:        CategoryFinancial,
			Legal:           LegalOrdinary,
			BaseConfidence:  ConfidenceHigh,
			Pattern:         regexp.MustCompile(`\b(?:4\d{3}|5[1-5]\d{2}|3[47]\d{2})[\s\-]?\d{4}[\s\-]?\d{4}[\s\-]?\d{1,4}\b`),
			Validator:       validate.Luhn,
			PseudonymPrefix: "CB",
			Enabled:         true,
		},
		{
			ID:              "SECU_FR",
			Label:           "French social security number",
			Category:        CategoryIdentity,
			Legal:           LegalSensitive,
			BaseConfidence:  ConfidenceHigh,
			Pattern:         regexp.MustCompile(`\b[12]\s?\d{2}\s?\d{2}\s?\d{2}\s?\d{3}\s?\d{3}\s?\d{2}\b`),
			Validator:       validate.SecuFR,
			PseudonymPrefix: "Secu",
			Enabled:         true,
		},
		{
			ID:              "NOM_CIVILITE",
			Label:           "Proper name (courtesy title)",
			Category:        CategoryIdentity,
			Legal:           LegalOrdinary,
			BaseConfidence:  ConfidenceMedium,
			Pattern:         regexp.MustCompile(civilities + `\s+(?:` + particles + `\s+)?` + properName),
			PseudonymPrefix: "Personne",
			Enabled:         true,
		},
		{
			ID:              "NOM_CONTEXTE",
			Label:           "Proper name (legal context)",
			Category:        CategoryIdentity,
			Legal:           LegalOrdinary,
			BaseConfidence:  ConfidenceMedium,
			Pattern:         regexp.MustCompile(nameContexts + `\s*:?\s+(?:` + particles + `\s+)?` + properName),
			PseudonymPrefix: "Personne",
			Enabled:         true,
		},
		{
			ID:              "NOM_MULTICONTEXTE",
			Label:           "Proper name (multi-word context)",
			Category:        CategoryIdentity,
			Legal:           LegalOrdinary,
			BaseConfidence:  ConfidenceMedium,
			Pattern:         regexp.MustCompile(multiContexts + `\s+(?:` + particles + `\s+)?` + properName),
			PseudonymPrefix: "Personne",
			Enabled:         true,
		},
		{
			ID:             "NOM_CONSECUTIF",
			Label:          "Proper name (heuristic)",
			Category:       CategoryIdentity,
			Legal:          LegalOrdinary,
			BaseConfidence: ConfidenceLow,
			// RE2 has no lookbehind: the left context (newline, punctuation,
			// or a lowercase word) is consumed as group 1 and the name pair
			// is carried by group 2.
			Pattern: regexp.MustCompile(
				`([\n,;:(]\s*|[a-zà-ÿ]\s)` +
					`([A-ZÀ-Ÿ][a-zà-ÿ]{2,}(?:-[A-ZÀ-Ÿ][a-zà-ÿ]+)?` +
					`\s+` +
					`(?:` + particles + `\s+)?` +
					`[A-ZÀ-Ÿ][a-zà-ÿ]{2,})`,
			),
			Group: 2,
			Adjust: func(match string) (Confidence, bool) {
				return AdjustConsecutiveName(match, h)
			},
			PseudonymPrefix: "Personne",
			Enabled:         true,
		},
	}
}
