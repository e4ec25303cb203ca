package handler

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/task-tracker/backend/internal/domain"
)

func register(t *testing.T, f *fixture, username, email, password string) (int, envelope) {
	t.Helper()
	return f.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
}

func TestRegister(t *testing.T) {
	f := newFixture(t)

	status, env := register(t, f, "alice", "Alice@Example.com", "Abc123")
	require.Equal(t, http.StatusCreated, status, env.Message)
	assert.True(t, env.Success)

	data := decodeData[struct {
		User  domain.User `json:"user"`
		Token string      `json:"token"`
	}](t, env)
	assert.Equal(t, "alice", data.User.Username)
	assert.Equal(t, "alice@example.com", data.User.Email)
	assert.Equal(t, domain.RoleUser, data.User.Role)
	assert.NotEmpty(t, data.Token)
	assert.NotContains(t, string(env.Data), "Abc123")
	assert.NotContains(t, string(env.Data), "passwordHash")

	stored := f.store.User(data.User.ID)
	require.NotNil(t, stored)
	assert.NotEqual(t, "Abc123", stored.PasswordHash)

	sent := f.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, domain.MailTypeWelcome, sent[0].Type)
	assert.Equal(t, "alice@example.com", sent[0].To)

	status, env = f.do(t, http.MethodGet, "/api/v1/auth/me", data.Token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"username":"alice"`)
}

func TestRegisterPasswordStrength(t *testing.T) {
	f := newFixture(t)

	status, env := register(t, f, "alice", "alice@example.com", "abcdef")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, []string{"password"}, env.fields())
	assert.Equal(t, 0, f.store.Calls["CreateUser"])

	status, _ = register(t, f, "alice", "alice@example.com", "Abc123")
	assert.Equal(t, http.StatusCreated, status)
}

func TestRegisterUsernameRules(t *testing.T) {
	f := newFixture(t)

	for _, username := range []string{"ab", strings.Repeat("x", 31), "bad name", "bad-name"} {
		status, env := register(t, f, username, "x@example.com", "Abc123")
		assert.Equal(t, http.StatusBadRequest, status, username)
		assert.Contains(t, env.fields(), "username", username)
	}
}

func TestRegisterReportsEveryInvalidField(t *testing.T) {
	f := newFixture(t)

	status, env := register(t, f, "a", "nope", "x")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Validation failed", env.Message)
	assert.Equal(t, []string{"username", "email", "password"}, env.fields())
}

func TestRegisterDuplicates(t *testing.T) {
	f := newFixture(t)
	status, _ := register(t, f, "alice", "alice@example.com", "Abc123")
	require.Equal(t, http.StatusCreated, status)

	status, env := register(t, f, "alice", "other@example.com", "Abc123")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Username already exists", env.Message)

	// normalized to the same address
	status, env = register(t, f, "alice2", "ALICE@example.com", "Abc123")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Email already registered", env.Message)
}

func TestRegisterSurvivesMailFailure(t *testing.T) {
	f := newFixture(t)
	f.mailer.Err = errors.New("broker unreachable")

	status, _ := register(t, f, "alice", "alice@example.com", "Abc123")
	assert.Equal(t, http.StatusCreated, status)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	status, _ := register(t, f, "alice", "alice@example.com", "Abc123")
	require.Equal(t, http.StatusCreated, status)

	status, env := f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "ALICE@example.com",
		"password": "Abc123",
	})
	require.Equal(t, http.StatusOK, status)
	data := decodeData[struct {
		Token string `json:"token"`
	}](t, env)
	assert.NotEmpty(t, data.Token)

	status, env = f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "Wrong123",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, msgInvalidCredentials, env.Message)

	status, env = f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "Abc123",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, msgInvalidCredentials, env.Message)
}

func TestLoginInvalidEmailIsAlways400(t *testing.T) {
	f := newFixture(t)

	for _, password := range []string{"", "a", "abcdef", "Abc123"} {
		status, env := f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email":    "not-an-email",
			"password": password,
		})
		assert.Equal(t, http.StatusBadRequest, status, "password %q", password)
		assert.Contains(t, env.fields(), "email")
		assert.NotContains(t, env.Message, "uppercase")
		for _, fe := range env.Errors {
			assert.NotContains(t, fe.Message, "uppercase")
		}
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newFixture(t)
	user := f.store.AddUser("alice", "alice@example.com", domain.RoleUser)
	bearer := f.tokenFor(t, user)

	status, _ := f.do(t, http.MethodPost, "/api/v1/auth/logout", bearer, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = f.do(t, http.MethodGet, "/api/v1/auth/me", bearer, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	// a fresh token still works
	status, _ = f.do(t, http.MethodGet, "/api/v1/auth/me", f.tokenFor(t, user), nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestMeRequiresCredential(t *testing.T) {
	f := newFixture(t)

	status, env := f.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)

	status, _ = f.do(t, http.MethodGet, "/api/v1/auth/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestResetPassword(t *testing.T) {
	f := newFixture(t)
	status, _ := register(t, f, "alice", "alice@example.com", "Abc123")
	require.Equal(t, http.StatusCreated, status)

	status, _ = f.do(t, http.MethodPost, "/api/v1/auth/reset-password/require", "", map[string]string{
		"email": "Alice@example.com",
	})
	require.Equal(t, http.StatusOK, status)

	sent := f.mailer.Sent()
	require.Len(t, sent, 2)
	mail := sent[1]
	assert.Equal(t, domain.MailTypeResetPassword, mail.Type)
	otp := mail.Data.(domain.ResetPasswordMailData).OTP
	assert.Len(t, otp, 6)
	assert.Equal(t, 15, mail.Data.(domain.ResetPasswordMailData).Expiration)

	wrong := "000000"
	if otp == wrong {
		wrong = "111111"
	}
	status, env := f.do(t, http.MethodPost, "/api/v1/auth/reset-password/confirm", "", map[string]string{
		"email":    "alice@example.com",
		"otp":      wrong,
		"password": "Xyz789",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, []string{"otp"}, env.fields())

	status, env = f.do(t, http.MethodPost, "/api/v1/auth/reset-password/confirm", "", map[string]string{
		"email":    "alice@example.com",
		"otp":      otp,
		"password": "weak",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, []string{"password"}, env.fields())

	status, _ = f.do(t, http.MethodPost, "/api/v1/auth/reset-password/confirm", "", map[string]string{
		"email":    "alice@example.com",
		"otp":      otp,
		"password": "Xyz789",
	})
	require.Equal(t, http.StatusOK, status)

	status, _ = f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "Xyz789",
	})
	assert.Equal(t, http.StatusOK, status)

	// the code is single use
	status, _ = f.do(t, http.MethodPost, "/api/v1/auth/reset-password/confirm", "", map[string]string{
		"email":    "alice@example.com",
		"otp":      otp,
		"password": "Abc123",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestResetPasswordUnknownEmailLooksSuccessful(t *testing.T) {
	f := newFixture(t)

	status, env := f.do(t, http.MethodPost, "/api/v1/auth/reset-password/require", "", map[string]string{
		"email": "ghost@example.com",
	})
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	assert.Empty(t, f.mailer.Sent())
}
