// Package validate holds the client-side input checks that run before
// any network call. Failures here are rendered inline and never sent to
// the backend.
package validate

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Required rejects empty or whitespace-only values.
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return eris.Errorf("%s is required", field)
	}
	return nil
}

// PIN accepts exactly four digits.
func PIN(value string) error {
	if len(value) != 4 {
		return eris.New("PIN must be exactly 4 digits")
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return eris.New("PIN must contain digits only")
		}
	}
	return nil
}

// PasswordsMatch rejects mismatched password confirmations.
func PasswordsMatch(password, confirmation string) error {
	if password != confirmation {
		return eris.New("passwords do not match")
	}
	return nil
}

// Phone accepts numbers that reduce to 10-15 digits, the range wa.me
// links can address.
func Phone(value string) error {
	digits := 0
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' || r == ' ' || r == '-' || r == '(' || r == ')':
			// Formatting characters are tolerated and stripped later.
		default:
			return eris.Errorf("phone contains invalid character %q", r)
		}
	}
	if digits < 10 || digits > 15 {
		return eris.New("phone must contain 10 to 15 digits")
	}
	return nil
}
