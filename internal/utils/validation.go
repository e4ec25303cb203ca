package utils

import (
	"strings"
	"time"
)

// DueDateLayouts are the ISO 8601 forms accepted for a task due date.
var DueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func ParseDueDate(s string) (time.Time, error) {
	var err error
	for _, layout := range DueDateLayouts {
		var t time.Time
		t, err = time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, err
}

// IsStrongPassword reports whether s contains at least one lowercase letter,
// one uppercase letter and one digit. Length is checked separately.
func IsStrongPassword(s string) bool {
	var lower, upper, digit bool
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= '0' && c <= '9':
			digit = true
		}
	}
	return lower && upper && digit
}

// NormalizeEmail canonicalizes an address that already passed the email check:
// the whole address is lowercased and provider specific aliases are folded
// (gmail dots and +tags, +tags for outlook and icloud, -tags for yahoo).
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	local := strings.ToLower(email[:at])
	domain := strings.ToLower(email[at+1:])

	switch domain {
	case "gmail.com", "googlemail.com":
		local = cutSubaddress(local, "+")
		local = strings.ReplaceAll(local, ".", "")
		domain = "gmail.com"
	case "outlook.com", "hotmail.com", "live.com", "icloud.com", "me.com", "mac.com":
		local = cutSubaddress(local, "+")
	case "yahoo.com", "ymail.com", "rocketmail.com":
		local = cutSubaddress(local, "-")
	}

	if local == "" {
		return email
	}
	return local + "@" + domain
}

func cutSubaddress(local, sep string) string {
	before, _, _ := strings.Cut(local, sep)
	return before
}
