// Package access holds the checks that decide who may call what: the
// credential gate, the role gate and the task visibility policy.
package access

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/sysu-ecnc-dev/task-tracker/backend/internal/domain"
)

type CredentialVerifier interface {
	Verify(token string) (*domain.Credential, error)
}

type IdentityFinder interface {
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
}

type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// CredentialGate resolves the bearer token of a request to a live user.
type CredentialGate struct {
	verifier    CredentialVerifier
	identities  IdentityFinder
	revocations RevocationChecker
}

func NewCredentialGate(verifier CredentialVerifier, identities IdentityFinder, revocations RevocationChecker) *CredentialGate {
	return &CredentialGate{
		verifier:    verifier,
		identities:  identities,
		revocations: revocations,
	}
}

// BearerToken extracts the token from an Authorization header value.
// It returns "" when the header is empty or uses another scheme.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Authenticate verifies the credential carried by header and loads its subject.
// Failures are *domain.Error values of kind Unauthenticated or UpstreamFailure.
func (g *CredentialGate) Authenticate(ctx context.Context, header string) (*domain.User, *domain.Credential, error) {
	raw := BearerToken(header)
	if raw == "" {
		return nil, nil, domain.Unauthenticated("Access denied. No token provided")
	}

	cred, err := g.verifier.Verify(raw)
	if err != nil {
		return nil, nil, domain.Unauthenticated("Invalid or expired token")
	}

	if cred.TokenID != "" {
		revoked, err := g.revocations.IsRevoked(ctx, cred.TokenID)
		if err != nil {
			return nil, nil, domain.UpstreamFailure(err)
		}
		if revoked {
			return nil, nil, domain.Unauthenticated("Invalid or expired token")
		}
	}

	user, err := g.identities.GetUserByID(ctx, cred.SubjectID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// the account was removed after the token was issued
			return nil, nil, domain.Unauthenticated("Invalid or expired token")
		default:
			return nil, nil, domain.UpstreamFailure(err)
		}
	}

	return user, cred, nil
}
