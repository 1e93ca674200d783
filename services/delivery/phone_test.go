package delivery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"leading national zero", "081234567890", "+6281234567890"},
		{"already international", "+6281234567890", "+6281234567890"},
		{"bare country number", "6281234567890", "+6281234567890"},
		{"spaces and hyphens", "0812-3456 7890", "+6281234567890"},
		{"parentheses", "(0812) 3456-7890", "+6281234567890"},
		{"empty", "", ""},
		{"only noise", "  - ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.raw, "+62"))
		})
	}
}

func TestNormalizePhone_OtherCountryCode(t *testing.T) {
	assert.Equal(t, "+60123456789", NormalizePhone("0123456789", "+60"))
}
