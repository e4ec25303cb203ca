// Package cache keeps short-lived authentication state in redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist remembers revoked token ids until the token would expire anyway.
type TokenBlacklist struct {
	rdb     *redis.Client
	timeout time.Duration
}

func NewTokenBlacklist(rdb *redis.Client, timeout time.Duration) *TokenBlacklist {
	return &TokenBlacklist{rdb: rdb, timeout: timeout}
}

func revokedTokenKey(tokenID string) string {
	return fmt.Sprintf("revoked_token_%s", tokenID)
}

func (b *TokenBlacklist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	return b.rdb.Set(ctx, revokedTokenKey(tokenID), 1, ttl).Err()
}

func (b *TokenBlacklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	n, err := b.rdb.Exists(ctx, revokedTokenKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// OTPStore holds the one-time passwords mailed for password resets.
type OTPStore struct {
	rdb     *redis.Client
	timeout time.Duration
}

func NewOTPStore(rdb *redis.Client, timeout time.Duration) *OTPStore {
	return &OTPStore{rdb: rdb, timeout: timeout}
}

func resetPasswordKey(email string) string {
	return fmt.Sprintf("otp_%s_reset_password", email)
}

func (s *OTPStore) Save(ctx context.Context, email, otp string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.rdb.Set(ctx, resetPasswordKey(email), otp, ttl).Err()
}

// Get returns the stored otp; ok is false when none is pending.
func (s *OTPStore) Get(ctx context.Context, email string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	otp, err := s.rdb.Get(ctx, resetPasswordKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return otp, true, nil
}

func (s *OTPStore) Delete(ctx context.Context, email string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.rdb.Del(ctx, resetPasswordKey(email)).Err()
}
