package utils

import (
	"regexp"
	"strings"
)

var (
	cpePattern    = regexp.MustCompile(`^PT0002\d{12}[A-Z]{2}$`)
	cuiPattern    = regexp.MustCompile(`^PT16\d{15}[A-Z]{2}$`)
	postalPattern = regexp.MustCompile(`^\d{4}-\d{3}$`)
	nonDigits     = regexp.MustCompile(`\D`)
)

// ValidateCPE checks the electricity delivery point format:
// PT0002 + 12 digits + 2 letters. Case-insensitive.
func ValidateCPE(cpe string) bool {
	return cpePattern.MatchString(strings.ToUpper(cpe))
}

// ValidateCUI checks the gas delivery point format:
// PT16 + 15 digits + 2 letters. Case-insensitive.
func ValidateCUI(cui string) bool {
	return cuiPattern.MatchString(strings.ToUpper(cui))
}

// ValidatePostalCode checks the Portuguese postal code format ####-###.
func ValidatePostalCode(code string) bool {
	return postalPattern.MatchString(code)
}

// ValidateNIF checks a Portuguese tax number: 9 digits, with the CRC
// check digit verified for company NIFs (starting with 5).
func ValidateNIF(nif string) bool {
	cleaned := nonDigits.ReplaceAllString(nif, "")
	if len(cleaned) != 9 {
		return false
	}
	if cleaned[0] == '5' {
		return validateNIFCheckDigit(cleaned)
	}
	return true
}

func validateNIFCheckDigit(nif string) bool {
	if len(nif) != 9 {
		return false
	}
	multipliers := []int{9, 8, 7, 6, 5, 4, 3, 2}
	total := 0
	for i, m := range multipliers {
		total += int(nif[i]-'0') * m
	}
	check := 11 - (total % 11)
	if check >= 10 {
		check = 0
	}
	return check == int(nif[8]-'0')
}

// ValidatePassword enforces the password rule: at least 8 characters with
// one uppercase letter, one digit and one special character.
func ValidatePassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var hasUpper, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune("!@#$%^&*", r):
			hasSpecial = true
		}
	}
	return hasUpper && hasDigit && hasSpecial
}
