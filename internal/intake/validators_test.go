package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidators(t *testing.T) {
	tests := []struct {
		name  string
		fn    Validator
		input string
		want  bool
	}{
		{"name plain", ValidName, "John Smith", true},
		{"name unicode", ValidName, "José Álvarez", true},
		{"name digits", ValidName, "John2", false},
		{"name punctuation", ValidName, "O'Brien", false},
		{"name empty", ValidName, "", false},
		{"name spaces only", ValidName, "   ", false},

		{"email ok", ValidEmail, "user@example.com", true},
		{"email subdomain suffix", ValidEmail, "first.last+tag@mail.example.co.uk", true},
		{"email no at", ValidEmail, "not-an-email", false},
		{"email no tld", ValidEmail, "user@example", false},
		{"email empty", ValidEmail, "", false},

		{"phone plain", ValidPhone, "1234567890", true},
		{"phone plus", ValidPhone, "+1234567890", true},
		{"phone formatted", ValidPhone, "+1 234-567-8901", true},
		{"phone short", ValidPhone, "12345", false},
		{"phone letters", ValidPhone, "12345abcde", false},
		{"phone too long", ValidPhone, "1234567890123456789", false},
		{"phone blank", ValidPhone, " - ", false},

		{"years zero", ValidYears, "0", true},
		{"years number", ValidYears, "12", true},
		{"years negative", ValidYears, "-1", false},
		{"years decimal", ValidYears, "2.5", false},
		{"years words", ValidYears, "three", false},
		{"years empty", ValidYears, "", false},

		{"min length ok", MinLength(3), "Go!", true},
		{"min length short", MinLength(3), "AI", false},
		{"min length runes", MinLength(3), "Zoë", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fn(tt.input))
		})
	}
}
