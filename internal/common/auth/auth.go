package auth

import (
	"context"
	"net/http"
	"strings"

	"restaurant-ordering/internal/common/httpx"
	"restaurant-ordering/internal/common/logger"
	"restaurant-ordering/internal/domain"
)

// Verifier checks a bearer token with the identity provider.
type Verifier interface {
	Verify(ctx context.Context, token string) (domain.Identity, error)
}

// UserSyncer records users the first time their token is seen.
type UserSyncer interface {
	EnsureUser(ctx context.Context, id domain.Identity) error
}

type Middleware struct {
	verifier Verifier
	users    UserSyncer
	lg       *logger.Logger
}

func New(v Verifier, users UserSyncer, lg *logger.Logger) *Middleware {
	return &Middleware{verifier: v, users: users, lg: lg}
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// Authenticate rejects requests without a valid bearer token and puts the
// caller's identity on the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := bearer(r)
		if tok == "" {
			httpx.WriteProblem(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		id, err := m.verifier.Verify(r.Context(), tok)
		if err != nil {
			m.lg.WithRequestID(httpx.RequestID(r.Context())).Debug("token_rejected", map[string]any{"reason": err.Error()})
			httpx.WriteProblem(w, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}
		if m.users != nil {
			if err := m.users.EnsureUser(r.Context(), id); err != nil {
				m.lg.WithRequestID(httpx.RequestID(r.Context())).Error("user_sync_failed", err, map[string]any{"uid": id.UID})
				httpx.WriteError(w, err)
				return
			}
		}
		next.ServeHTTP(w, r.WithContext(domain.WithIdentity(r.Context(), id)))
	})
}

// RequireAdmin must run after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := domain.IdentityFrom(r.Context())
		if !ok {
			httpx.WriteProblem(w, http.StatusUnauthorized, "unauthorized", "not authenticated")
			return
		}
		if !id.IsAdmin {
			httpx.WriteProblem(w, http.StatusForbidden, "forbidden", "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// User wraps h with Authenticate.
func (m *Middleware) User(h http.HandlerFunc) http.Handler { return m.Authenticate(h) }

// Admin wraps h with Authenticate and RequireAdmin.
func (m *Middleware) Admin(h http.HandlerFunc) http.Handler { return m.Authenticate(RequireAdmin(h)) }

// Caller returns the identity Authenticate stored, or ErrUnauthorized.
func Caller(ctx context.Context) (domain.Identity, error) {
	id, ok := domain.IdentityFrom(ctx)
	if !ok {
		return domain.Identity{}, domain.ErrUnauthorized
	}
	return id, nil
}
