package ads

import (
	"fmt"
	"strings"
)

const customerIDLength = 10

// FormatCustomerID normalizes a customer ID to the canonical ten-digit
// form. Quotes, dashes and any other non-digit characters are stripped and
// the result is left-padded with zeros, so "123-456-7890", `"1234567890"`
// and 98765 all come out as valid IDs.
func FormatCustomerID(raw string) (string, error) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	id := digits.String()
	if id == "" {
		return "", fmt.Errorf("customer ID %q contains no digits", raw)
	}
	if len(id) > customerIDLength {
		return "", fmt.Errorf("customer ID %q has more than %d digits", raw, customerIDLength)
	}

	return strings.Repeat("0", customerIDLength-len(id)) + id, nil
}
