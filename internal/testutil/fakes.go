package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/sysu-ecnc-dev/task-tracker/backend/internal/domain"
)

// FakeBlacklist is an in-memory token revocation list.
type FakeBlacklist struct {
	mu      sync.Mutex
	revoked map[string]time.Time

	Err error
}

func NewFakeBlacklist() *FakeBlacklist {
	return &FakeBlacklist{revoked: make(map[string]time.Time)}
}

func (f *FakeBlacklist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if f.Err != nil {
		return f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked[tokenID] = expiresAt
	return nil
}

func (f *FakeBlacklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if f.Err != nil {
		return false, f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.revoked[tokenID]
	return ok, nil
}

// FakeOTPStore keeps one-time passwords in memory and ignores their ttl.
type FakeOTPStore struct {
	mu   sync.Mutex
	otps map[string]string

	Err error
}

func NewFakeOTPStore() *FakeOTPStore {
	return &FakeOTPStore{otps: make(map[string]string)}
}

func (f *FakeOTPStore) Save(ctx context.Context, email, otp string, ttl time.Duration) error {
	if f.Err != nil {
		return f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.otps[email] = otp
	return nil
}

func (f *FakeOTPStore) Get(ctx context.Context, email string) (string, bool, error) {
	if f.Err != nil {
		return "", false, f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	otp, ok := f.otps[email]
	return otp, ok, nil
}

func (f *FakeOTPStore) Delete(ctx context.Context, email string) error {
	if f.Err != nil {
		return f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.otps, email)
	return nil
}

// FakeMailer records published mail messages.
type FakeMailer struct {
	mu       sync.Mutex
	Messages []domain.MailMessage

	Err error
}

func (f *FakeMailer) Publish(ctx context.Context, msg domain.MailMessage) error {
	if f.Err != nil {
		return f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Messages = append(f.Messages, msg)
	return nil
}

// Sent returns a copy of the published messages.
func (f *FakeMailer) Sent() []domain.MailMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.MailMessage(nil), f.Messages...)
}
