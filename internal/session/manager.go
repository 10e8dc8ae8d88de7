package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cargoline/apiserver/config"
	"github.com/cargoline/apiserver/types"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type contextKey struct{}

// Manager ties the session cookie to the server-side Store.
// The cookie value is an HS256 token whose jti is the session id;
// the payload itself never leaves the server.
type Manager struct {
	store      Store
	secret     []byte
	cookieName string
	ttl        time.Duration
	secure     bool
	now        func() time.Time
}

func NewManager(store Store, cfg config.SessionConfig) (*Manager, error) {
	if cfg.Secret == "" {
		return nil, errors.New("SESSION_SECRET is required")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("session ttl must be positive")
	}

	cookieName := cfg.CookieName
	if cookieName == "" {
		cookieName = "session"
	}

	return &Manager{
		store:      store,
		secret:     []byte(cfg.Secret),
		cookieName: cookieName,
		ttl:        cfg.TTL,
		secure:     cfg.Secure,
		now:        time.Now,
	}, nil
}

// Load attaches the caller's session, if any, to the request context.
// Missing, tampered and expired cookies all mean no session.
func (m *Manager) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := m.sessionID(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		sess, err := m.store.Get(r.Context(), id)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				log.Ctx(r.Context()).Error().Err(err).Msg("session lookup failed")
			}
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), sess)))
	})
}

// Issue stores sess under a fresh id, replacing any session the request
// already carried, and sets the cookie.
func (m *Manager) Issue(w http.ResponseWriter, r *http.Request, sess types.Session) error {
	if !sess.Role.Valid() {
		return fmt.Errorf("invalid role %q", sess.Role)
	}

	if oldID, ok := m.sessionID(r); ok {
		if err := m.store.Delete(r.Context(), oldID); err != nil {
			return fmt.Errorf("drop previous session: %w", err)
		}
	}

	id := uuid.NewString()
	if err := m.store.Set(r.Context(), id, sess, m.ttl); err != nil {
		return fmt.Errorf("store session: %w", err)
	}

	now := m.now()
	expiresAt := now.Add(m.ttl)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}).SignedString(m.secret)
	if err != nil {
		_ = m.store.Delete(r.Context(), id)
		return fmt.Errorf("sign session cookie: %w", err)
	}

	http.SetCookie(w, m.cookie(token, int(m.ttl.Seconds()), expiresAt))
	return nil
}

// Clear deletes the request's session, if any, and expires the cookie.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) error {
	var err error
	if id, ok := m.sessionID(r); ok {
		err = m.store.Delete(r.Context(), id)
	}
	http.SetCookie(w, m.cookie("", -1, time.Unix(0, 0)))
	return err
}

func (m *Manager) cookie(value string, maxAge int, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  expires,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (m *Manager) sessionID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(
		cookie.Value,
		&claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid || claims.ID == "" {
		return "", false
	}
	return claims.ID, true
}

// NewContext returns a copy of ctx carrying sess.
func NewContext(ctx context.Context, sess types.Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

// FromContext returns the session attached by Manager.Load.
func FromContext(ctx context.Context) (types.Session, bool) {
	sess, ok := ctx.Value(contextKey{}).(types.Session)
	return sess, ok
}
