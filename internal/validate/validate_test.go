package validate

import "testing"

func TestLuhn(t *testing.T) {
	t.Run("ValidCardNumber", func(t *testing.T) {
		if !Luhn("4532015112830366") {
			t.Error("Valid card number rejected")
		}
	})

	t.Run("InvalidCardNumber", func(t *testing.T) {
		if Luhn("1234567890123456") {
			t.Error("Invalid card number accepted")
		}
	})

	t.Run("WithSeparators", func(t *testing.T) {
		if !Luhn("4532 0151 1283 0366") {
			t.Error("Spaced card number rejected")
		}
		if !Luhn("4532-0151-1283-0366") {
			t.Error("Dashed card number rejected")
		}
	})

	t.Run("TooShort", func(t *testing.T) {
		if Luhn("4532") {
			t.Error("Too-short number accepted")
		}
	})

	t.Run("NonDigits", func(t *testing.T) {
		if Luhn("4532O15112830366") {
			t.Error("Number with a letter accepted")
		}
	})
}

func TestIBAN(t *testing.T) {
	valid := []string{
		"BE68539007547034",
		"BE68 5390 0754 7034",
		"FR1420041010050500013M02606",
		"DE89370400440532013000",
		"NL91ABNA0417164300",
		"LU280019400644750000",
	}
	for _, iban := range valid {
		if !IBAN(iban) {
			t.Errorf("Valid IBAN %q rejected", iban)
		}
	}

	t.Run("MutatedCheckDigits", func(t *testing.T) {
		if IBAN("BE69539007547034") {
			t.Error("IBAN with mutated check digits accepted")
		}
		if IBAN("DE88370400440532013000") {
			t.Error("IBAN with mutated check digits accepted")
		}
	})

	t.Run("TooShort", func(t *testing.T) {
		if IBAN("BE685390") {
			t.Error("Truncated IBAN accepted")
		}
	})

	t.Run("LowercaseInput", func(t *testing.T) {
		if !IBAN("be68 5390 0754 7034") {
			t.Error("Lowercase IBAN rejected")
		}
	})
}

func TestNISS(t *testing.T) {
	t.Run("ValidPre2000", func(t *testing.T) {
		if !NISS("85073003328") {
			t.Error("Valid pre-2000 NISS rejected")
		}
	})

	t.Run("InvalidChecksum", func(t *testing.T) {
		if NISS("85073003329") {
			t.Error("NISS with broken checksum accepted")
		}
	})

	t.Run("WithSeparators", func(t *testing.T) {
		if !NISS("85.07.30-033.28") {
			t.Error("Formatted NISS rejected")
		}
	})

	t.Run("WrongLength", func(t *testing.T) {
		if NISS("8507300332") {
			t.Error("Ten-digit NISS accepted")
		}
	})
}

func TestINAMI(t *testing.T) {
	t.Run("ValidChecksum", func(t *testing.T) {
		// 123456 mod 97 is 72, complement 25
		if !INAMI("12345672001") {
			t.Error("INAMI with direct mod 97 check rejected")
		}
		if !INAMI("12345625001") {
			t.Error("INAMI with complement check rejected")
		}
	})

	t.Run("InvalidChecksum", func(t *testing.T) {
		if INAMI("12345699001") {
			t.Error("INAMI with broken checksum accepted")
		}
	})

	t.Run("WrongLength", func(t *testing.T) {
		if INAMI("123456") {
			t.Error("Truncated INAMI accepted")
		}
	})
}

func TestSecuFR(t *testing.T) {
	t.Run("ValidNumber", func(t *testing.T) {
		if !SecuFR("185078500608431") {
			t.Error("Valid French social security number rejected")
		}
	})

	t.Run("InvalidKey", func(t *testing.T) {
		if SecuFR("185078500608445") {
			t.Error("Number with wrong key accepted")
		}
	})

	t.Run("InvalidSexDigit", func(t *testing.T) {
		if SecuFR("385078500608431") {
			t.Error("Number with sex digit 3 accepted")
		}
	})

	t.Run("InvalidMonth", func(t *testing.T) {
		if SecuFR("185138500608431") {
			t.Error("Number with month 13 accepted")
		}
	})
}
