package handler

import (
	"context"
	"net/http"

	"github.com/sysu-ecnc-dev/task-tracker/backend/internal/domain"
)

type ContextKey string

var SessionCtxKey ContextKey = "session"

// session is what the credential gate resolved for the current request.
type session struct {
	user       *domain.User
	credential *domain.Credential
}

func withSession(ctx context.Context, s *session) context.Context {
	return context.WithValue(ctx, SessionCtxKey, s)
}

// sessionFrom must only be used behind the auth middleware.
func sessionFrom(r *http.Request) *session {
	return r.Context().Value(SessionCtxKey).(*session)
}

// authenticate runs the credential gate for handlers that validate a body first.
func (h *Handler) authenticate(r *http.Request) (*session, error) {
	user, cred, err := h.gate.Authenticate(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		return nil, err
	}
	return &session{user: user, credential: cred}, nil
}
