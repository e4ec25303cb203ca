package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "revoked_token_abc", revokedTokenKey("abc"))
	assert.Equal(t, "otp_alice@example.com_reset_password", resetPasswordKey("alice@example.com"))
}

func TestRevokeExpiredTokenIsNoop(t *testing.T) {
	// no client: an expired token must not reach redis
	b := NewTokenBlacklist(nil, time.Second)
	assert.NoError(t, b.Revoke(context.Background(), "abc", time.Now().Add(-time.Minute)))
}
