package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Alice@Example.COM", "alice@example.com"},
		{"  bob@example.com ", "bob@example.com"},
		{"John.Doe+news@gmail.com", "johndoe@gmail.com"},
		{"j.doe@googlemail.com", "jdoe@gmail.com"},
		{"me+tag@Outlook.com", "me@outlook.com"},
		{"me+tag@icloud.com", "me@icloud.com"},
		{"me-tag@yahoo.com", "me@yahoo.com"},
		{"first.last+x@example.org", "first.last+x@example.org"},
		{"no-at-sign", "no-at-sign"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeEmail(tt.in), "input %q", tt.in)
	}
}

func TestIsStrongPassword(t *testing.T) {
	assert.True(t, IsStrongPassword("Abc123"))
	assert.True(t, IsStrongPassword("1aA"))
	assert.False(t, IsStrongPassword("abcdef"))
	assert.False(t, IsStrongPassword("ABC123"))
	assert.False(t, IsStrongPassword("abcDEF"))
	assert.False(t, IsStrongPassword(""))
}

func TestParseDueDate(t *testing.T) {
	got, err := ParseDueDate("2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseDueDate("2025-03-01T12:30:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC), got)

	for _, bad := range []string{"", "01/03/2025", "2025-13-01", "tomorrow"} {
		_, err := ParseDueDate(bad)
		assert.Error(t, err, "input %q", bad)
	}
}
