package handler

import (
	"crypto/subtle"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/task-tracker/backend/internal/domain"
	"github.com/sysu-ecnc-dev/task-tracker/backend/internal/utils"
	"github.com/sysu-ecnc-dev/task-tracker/backend/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

const msgInvalidCredentials = "Invalid email or password"

type authData struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// hashPassword maps bcrypt's input limit to a field error on password.
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", domain.ValidationFailed([]domain.FieldError{
				{Field: "password", Message: "Password must be at most 72 bytes long"},
			})
		}
		return "", domain.UpstreamFailure(err)
	}
	return string(hash), nil
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validator.Validate(validation.RegisterRules, validation.Input{
		"username": &req.Username,
		"email":    &req.Email,
		"password": &req.Password,
	}); err != nil {
		h.fail(w, r, err)
		return
	}

	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	user := &domain.User{
		Username:     req.Username,
		PasswordHash: passwordHash,
		Email:        req.Email,
		Role:         domain.RoleUser,
	}

	if err := h.store.CreateUser(r.Context(), user); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "users_username_key":
				h.fail(w, r, domain.Conflict("Username already exists"))
			case "users_email_key":
				h.fail(w, r, domain.Conflict("Email already registered"))
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	ss, _, err := h.tokens.Issue(user)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// the account exists already, a lost welcome mail is not worth failing for
	if err := h.mailer.Publish(r.Context(), domain.MailMessage{
		Type: domain.MailTypeWelcome,
		To:   user.Email,
		Data: domain.WelcomeMailData{Username: user.Username},
	}); err != nil {
		slog.Warn("failed to queue welcome mail", "user", user.ID, "error", err)
	}

	h.createdResponse(w, r, "User registered successfully", authData{User: user, Token: ss})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validator.Validate(validation.LoginRules, validation.Input{
		"email":    &req.Email,
		"password": &req.Password,
	}); err != nil {
		h.fail(w, r, err)
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.fail(w, r, domain.Unauthenticated(msgInvalidCredentials))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			h.fail(w, r, domain.Unauthenticated(msgInvalidCredentials))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	ss, _, err := h.tokens.Issue(user)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Login successful", authData{User: user, Token: ss})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)

	if err := h.blacklist.Revoke(r.Context(), s.credential.TokenID, s.credential.ExpiresAt); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Logged out successfully", nil)
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	h.successResponse(w, r, "User retrieved successfully", map[string]any{"user": s.user})
}

func (h *Handler) RequireResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validator.Validate(validation.ResetPasswordRequireRules, validation.Input{
		"email": &req.Email,
	}); err != nil {
		h.fail(w, r, err)
		return
	}

	const msgSent = "Verification code sent by email"

	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// answer as if the mail went out so the endpoint cannot probe for accounts
			h.successResponse(w, r, msgSent, nil)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	otp := utils.GenerateRandomOTP()
	ttl := time.Duration(h.config.OTP.Expiration) * time.Second

	if err := h.otps.Save(r.Context(), user.Email, otp, ttl); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.mailer.Publish(r.Context(), domain.MailMessage{
		Type: domain.MailTypeResetPassword,
		To:   user.Email,
		Data: domain.ResetPasswordMailData{
			Username:   user.Username,
			OTP:        otp,
			Expiration: h.config.OTP.Expiration / 60, // minutes in the mail, seconds in config
		},
	}); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, msgSent, nil)
}

func (h *Handler) ConfirmResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		OTP      string `json:"otp"`
		Password string `json:"password"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validator.Validate(validation.ResetPasswordConfirmRules, validation.Input{
		"email":    &req.Email,
		"otp":      &req.OTP,
		"password": &req.Password,
	}); err != nil {
		h.fail(w, r, err)
		return
	}

	invalidOTP := domain.ValidationFailed([]domain.FieldError{
		{Field: "otp", Message: "Invalid or expired verification code"},
	})

	otp, ok, err := h.otps.Get(r.Context(), req.Email)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !ok || subtle.ConstantTimeCompare([]byte(otp), []byte(req.OTP)) != 1 {
		h.fail(w, r, invalidOTP)
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.fail(w, r, invalidOTP)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	user.PasswordHash = passwordHash

	if err := h.store.UpdateUser(r.Context(), user); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.fail(w, r, domain.Conflict("Failed to reset password, please retry"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.otps.Delete(r.Context(), req.Email); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Password reset successfully", nil)
}
