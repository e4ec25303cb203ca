package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/task-tracker/backend/internal/domain"
)

func TestIssueAndVerify(t *testing.T) {
	m := NewManager("secret", time.Hour)
	user := &domain.User{ID: 42, Role: domain.RoleUser}

	ss, exp, err := m.Issue(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	cred, err := m.Verify(ss)
	require.NoError(t, err)
	assert.Equal(t, int64(42), cred.SubjectID)
	assert.NotEmpty(t, cred.TokenID)
	assert.Equal(t, exp.Unix(), cred.ExpiresAt.Unix())
}

func TestIssueUsesFreshTokenIDs(t *testing.T) {
	m := NewManager("secret", time.Hour)
	user := &domain.User{ID: 1, Role: domain.RoleUser}

	a, _, err := m.Issue(user)
	require.NoError(t, err)
	b, _, err := m.Issue(user)
	require.NoError(t, err)

	ca, err := m.Verify(a)
	require.NoError(t, err)
	cb, err := m.Verify(b)
	require.NoError(t, err)
	assert.NotEqual(t, ca.TokenID, cb.TokenID)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := NewManager("secret", -time.Minute)
	ss, _, err := m.Issue(&domain.User{ID: 1})
	require.NoError(t, err)

	_, err = m.Verify(ss)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	ss, _, err := NewManager("other", time.Hour).Issue(&domain.User{ID: 1})
	require.NoError(t, err)

	_, err = NewManager("secret", time.Hour).Verify(ss)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := NewManager("secret", time.Hour).Verify("not-a-token")
	assert.Error(t, err)
}

func TestVerifyRejectsNonNumericSubject(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	ss, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewManager("secret", time.Hour).Verify(ss)
	assert.ErrorIs(t, err, ErrInvalidSubject)
}

func TestVerifyRejectsTokenWithoutExpiry(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "1"})
	ss, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewManager("secret", time.Hour).Verify(ss)
	assert.Error(t, err)
}
