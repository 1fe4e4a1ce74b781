package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequired(t *testing.T) {
	assert.NoError(t, Required("name", "Cafe Noir"))
	assert.Error(t, Required("name", ""))
	assert.Error(t, Required("name", "   "))
}

func TestPIN(t *testing.T) {
	assert.NoError(t, PIN("1234"))
	assert.Error(t, PIN("123"))
	assert.Error(t, PIN("12345"))
	assert.Error(t, PIN("12a4"))
	assert.Error(t, PIN(""))
}

func TestPasswordsMatch(t *testing.T) {
	assert.NoError(t, PasswordsMatch("secret", "secret"))
	assert.Error(t, PasswordsMatch("secret", "Secret"))
}

func TestPhone(t *testing.T) {
	assert.NoError(t, Phone("+911234567890"))
	assert.NoError(t, Phone("+91 (123) 456-7890"))
	assert.Error(t, Phone("12345"))
	assert.Error(t, Phone("phone#123456789012"))
	assert.Error(t, Phone("1234567890123456"))
}
