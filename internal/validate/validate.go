// Package validate contains the checksum and format validators used to
// confirm pattern matches before they are reported as detections. Every
// validator is a pure function from candidate text to a boolean verdict.
package validate

import (
	"strconv"
	"strings"
)

var separatorReplacer = strings.NewReplacer(" ", "", ".", "", "-", "", "\t", "")

func stripSeparators(s string) string {
	return separatorReplacer.Replace(s)
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// Luhn reports whether the candidate is a valid payment card number per the
// Luhn checksum. Separators are stripped; 13 to 19 digits are required.
func Luhn(candidate string) bool {
	clean := stripSeparators(candidate)
	if len(clean) < 13 || len(clean) > 19 || !allDigits(clean) {
		return false
	}

	sum := 0
	alternate := false
	for i := len(clean) - 1; i >= 0; i-- {
		n := int(clean[i] - '0')
		if alternate {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
		alternate = !alternate
	}

	return sum%10 == 0
}

// IBAN reports whether the candidate is a valid IBAN per ISO 13616
// (mod-97-10). The first four characters are moved to the end, letters are
// mapped to two-digit numerals (A=10..Z=35), and the resulting numeral string
// must leave remainder 1 modulo 97. The remainder is carried digit by digit
// so arbitrarily long IBANs never overflow.
func IBAN(candidate string) bool {
	clean := strings.ToUpper(stripSeparators(candidate))
	if len(clean) < 15 || len(clean) > 34 {
		return false
	}

	rearranged := clean[4:] + clean[:4]

	remainder := 0
	for i := 0; i < len(rearranged); i++ {
		c := rearranged[i]
		switch {
		case c >= '0' && c <= '9':
			remainder = (remainder*10 + int(c-'0')) % 97
		case c >= 'A' && c <= 'Z':
			// Two-digit letter value, e.g. B -> 11
			v := int(c-'A') + 10
			remainder = (remainder*100 + v) % 97
		default:
			return false
		}
	}

	return remainder == 1
}

// NISS reports whether the candidate is a valid Belgian national register
// number. The 11-digit number splits into a 9-digit birth part and a 2-digit
// check; both the pre-2000 encoding and the post-2000 encoding (birth part
// prefixed with digit 2) are accepted.
func NISS(candidate string) bool {
	clean := stripSeparators(candidate)
	if len(clean) != 11 || !allDigits(clean) {
		return false
	}

	birthPart, err := strconv.ParseInt(clean[:9], 10, 64)
	if err != nil {
		return false
	}
	check, err := strconv.ParseInt(clean[9:], 10, 64)
	if err != nil {
		return false
	}

	// Post-2000 encoding first: the birth part is prefixed with 2
	if 97-((2_000_000_000+birthPart)%97) == check {
		return true
	}

	return 97-(birthPart%97) == check
}

// INAMI reports whether the candidate is a valid Belgian professional
// register number (11 digits). The check digits in positions 7-8 must match
// either base mod 97 or 97 - (base mod 97); both encodings occur in
// circulation.
func INAMI(candidate string) bool {
	clean := stripSeparators(candidate)
	if len(clean) != 11 || !allDigits(clean) {
		return false
	}

	base, err := strconv.ParseInt(clean[:6], 10, 64)
	if err != nil {
		return false
	}
	check, err := strconv.ParseInt(clean[6:8], 10, 64)
	if err != nil {
		return false
	}

	mod := base % 97
	return check == mod || check == 97-mod
}

// SecuFR reports whether the candidate is a valid French social security
// number: 15 digits, sex code 1 or 2, month 01-12 or the special value 20
// (Corsica), and a mod-97 key over the first 13 digits.
func SecuFR(candidate string) bool {
	clean := strings.ReplaceAll(candidate, " ", "")
	if len(clean) != 15 || !allDigits(clean) {
		return false
	}

	if clean[0] != '1' && clean[0] != '2' {
		return false
	}

	month, err := strconv.Atoi(clean[3:5])
	if err != nil {
		return false
	}
	if month < 1 || (month > 12 && month != 20) {
		return false
	}

	base, err := strconv.ParseInt(clean[:13], 10, 64)
	if err != nil {
		return false
	}
	key, err := strconv.ParseInt(clean[13:], 10, 64)
	if err != nil {
		return false
	}

	return 97-(base%97) == key
}
