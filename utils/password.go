package utils

import (
	"crypto/rand"
	"math/big"
)

const (
	passwordUppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	passwordLowercase = "abcdefghijklmnopqrstuvwxyz"
	passwordDigits    = "0123456789"
	passwordSpecial   = "!@#$%^&*"
)

// GenerateStrongPassword builds an initial password for onboarded partner
// accounts: length characters including at least one uppercase letter,
// one digit and one special character, shuffled.
func GenerateStrongPassword(length int) string {
	if length < 8 {
		length = 8
	}

	password := []byte{
		randomChar(passwordUppercase),
		randomChar(passwordDigits),
		randomChar(passwordSpecial),
	}

	allChars := passwordUppercase + passwordLowercase + passwordDigits + passwordSpecial
	for i := 0; i < length-3; i++ {
		password = append(password, randomChar(allChars))
	}

	for i := len(password) - 1; i > 0; i-- {
		j := randomInt(i + 1)
		password[i], password[j] = password[j], password[i]
	}

	return string(password)
}

func randomChar(charset string) byte {
	return charset[randomInt(len(charset))]
}

func randomInt(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand only fails when the system entropy source is
		// broken; fall back to a fixed index rather than panic.
		return 0
	}
	return int(v.Int64())
}
