package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCPE(t *testing.T) {
	assert.True(t, ValidateCPE("PT0002123456789012AB"))
	assert.True(t, ValidateCPE("pt0002123456789012ab"), "case-insensitive")
	assert.False(t, ValidateCPE("PT0003123456789012AB"))
	assert.False(t, ValidateCPE("PT000212345678901AB"), "too few digits")
	assert.False(t, ValidateCPE("PT0002123456789012A1"))
	assert.False(t, ValidateCPE(""))
}

func TestValidateCUI(t *testing.T) {
	assert.True(t, ValidateCUI("PT16123456789012345XY"))
	assert.True(t, ValidateCUI("pt16123456789012345xy"))
	assert.False(t, ValidateCUI("PT1612345678901234XY"), "too few digits")
	assert.False(t, ValidateCUI("PT17123456789012345XY"))
	assert.False(t, ValidateCUI(""))
}

func TestValidatePostalCode(t *testing.T) {
	assert.True(t, ValidatePostalCode("4700-123"))
	assert.False(t, ValidatePostalCode("4700123"))
	assert.False(t, ValidatePostalCode("470-1234"))
	assert.False(t, ValidatePostalCode(""))
}

func TestValidateNIF(t *testing.T) {
	assert.True(t, ValidateNIF("123456789"), "personal NIF, length only")
	assert.True(t, ValidateNIF("123 456 789"), "separators are stripped")
	assert.False(t, ValidateNIF("12345678"))
	assert.False(t, ValidateNIF("1234567890"))

	// Company NIFs (prefix 5) verify the check digit: 5*9+0*8+...+0*2=45,
	// 45%11=1, 11-1=10 -> 0.
	assert.True(t, ValidateNIF("500000000"))
	assert.False(t, ValidateNIF("500000001"))
}

func TestValidatePassword(t *testing.T) {
	assert.True(t, ValidatePassword("Abcdef1!"))
	assert.False(t, ValidatePassword("Abcde1!"), "too short")
	assert.False(t, ValidatePassword("abcdefg1!"), "missing uppercase")
	assert.False(t, ValidatePassword("Abcdefgh!"), "missing digit")
	assert.False(t, ValidatePassword("Abcdefg12"), "missing special")
}

func TestGenerateStrongPassword(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		password := GenerateStrongPassword(12)
		assert.Len(t, password, 12)
		assert.True(t, ValidatePassword(password), "generated password %q must satisfy the policy", password)
		seen[password] = true
	}
	assert.Greater(t, len(seen), 1, "passwords are random")
}
