package handler

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sysu-ecnc-dev/task-tracker/backend/internal/access"
	"github.com/sysu-ecnc-dev/task-tracker/backend/internal/config"
	"github.com/sysu-ecnc-dev/task-tracker/backend/internal/domain"
	"github.com/sysu-ecnc-dev/task-tracker/backend/internal/validation"
)

// Store is the persistence the handlers need. Absent rows are reported as sql.ErrNoRows.
type Store interface {
	access.IdentityFinder
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	GetAllUsers(ctx context.Context) ([]*domain.User, error)

	CreateTask(ctx context.Context, task *domain.Task) error
	GetTaskByID(ctx context.Context, id int64) (*domain.Task, error)
	UpdateTask(ctx context.Context, task *domain.Task) error
	DeleteTask(ctx context.Context, id int64) error
	GetTasksVisibleTo(ctx context.Context, userID int64) ([]*domain.Task, error)
	GetAllTasks(ctx context.Context) ([]*domain.Task, error)
	GetAllTasksWithOwners(ctx context.Context) ([]*domain.TaskWithOwners, error)
}

type TokenManager interface {
	access.CredentialVerifier
	Issue(user *domain.User) (string, time.Time, error)
}

type Blacklist interface {
	access.RevocationChecker
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
}

type OTPStore interface {
	Save(ctx context.Context, email, otp string, ttl time.Duration) error
	Get(ctx context.Context, email string) (string, bool, error)
	Delete(ctx context.Context, email string) error
}

type MailPublisher interface {
	Publish(ctx context.Context, msg domain.MailMessage) error
}

type Handler struct {
	validator *validation.Validator
	config    *config.Config
	store     Store
	gate      *access.CredentialGate
	tokens    TokenManager
	blacklist Blacklist
	otps      OTPStore
	mailer    MailPublisher

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, store Store, tokens TokenManager, blacklist Blacklist, otps OTPStore, mailer MailPublisher) (*Handler, error) {
	v, err := validation.New()
	if err != nil {
		return nil, err
	}

	return &Handler{
		validator: v,
		config:    cfg,
		store:     store,
		gate:      access.NewCredentialGate(tokens, store, blacklist),
		tokens:    tokens,
		blacklist: blacklist,
		otps:      otps,
		mailer:    mailer,

		Mux: chi.NewRouter(),
	}, nil
}

// RegisterRoutes wires the endpoints. Routes without a body authenticate in
// middleware; routes with a body validate it first and authenticate inside the
// handler, so validation errors are reported before credential errors.
func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.With(h.auth).Post("/logout", h.Logout)
			r.With(h.auth).Get("/me", h.GetMe)
			r.Route("/reset-password", func(r chi.Router) {
				r.Post("/require", h.RequireResetPassword)
				r.Post("/confirm", h.ConfirmResetPassword)
			})
		})

		r.Route("/tasks", func(r chi.Router) {
			r.With(h.auth).Get("/", h.GetTasks)
			r.Post("/", h.CreateTask)
			r.Route("/{id}", func(r chi.Router) {
				r.With(h.auth).Get("/", h.GetTask)
				r.Put("/", h.UpdateTask)
				r.With(h.auth).Delete("/", h.DeleteTask)
			})
		})

		// admin only: the credential gate runs before the role gate so that an
		// anonymous request is rejected as unauthenticated
		r.Route("/admin", func(r chi.Router) {
			r.Use(h.auth)
			r.Use(h.requireRole(domain.RoleAdmin))
			r.Get("/users", h.GetAllUsers)
			r.Get("/tasks", h.GetAllTasks)
		})
	})
}
