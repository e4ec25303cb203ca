package domain

import "time"

// Credential is what a verified bearer token proves about its holder.
type Credential struct {
	SubjectID int64
	TokenID   string
	ExpiresAt time.Time
}
