package ads

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCustomerID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "already canonical", in: "1234567890", want: "1234567890"},
		{name: "dashed", in: "123-456-7890", want: "1234567890"},
		{name: "double quoted", in: `"1234567890"`, want: "1234567890"},
		{name: "single quoted", in: "'1234567890'", want: "1234567890"},
		{name: "short ID left-padded", in: "98765", want: "0000098765"},
		{name: "dashed and quoted", in: `"123-456-789"`, want: "0123456789"},
		{name: "surrounding whitespace", in: " 1234567890 ", want: "1234567890"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatCustomerID(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatCustomerID_Invalid(t *testing.T) {
	_, err := FormatCustomerID("")
	assert.Error(t, err)

	_, err = FormatCustomerID("not-a-customer")
	assert.Error(t, err)

	_, err = FormatCustomerID("12345678901")
	assert.Error(t, err)
}
