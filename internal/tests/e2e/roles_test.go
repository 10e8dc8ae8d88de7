//go:build e2e

package e2e

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/cargoline/apiserver/config"
	"github.com/cargoline/apiserver/internal/password"
	"github.com/cargoline/apiserver/internal/services"
	"github.com/cargoline/apiserver/internal/store"
	"github.com/cargoline/apiserver/types"
	"github.com/google/uuid"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := openDB(config.LoadConfig())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// newAuthService talks to the e2e database with the admin shortcut disabled.
func newAuthService(conn *sql.DB) *services.AuthService {
	return services.NewAuthService(
		store.NewUserRepository(conn),
		password.NewHasher(password.DefaultParams),
		config.AdminConfig{},
		nil,
		"",
	)
}

func TestLoginRoleAfterRegistration(t *testing.T) {
	conn := openTestDB(t)
	username := fmt.Sprintf("roles_%d", time.Now().UnixNano())

	if status := doJSON(t, newClient(t), http.MethodPost, "/auth/register", registration(username), nil); status != http.StatusCreated {
		t.Fatalf("register status %d", status)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sess, err := newAuthService(conn).Login(ctx, username, "testpass123!")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if sess.Role != types.RoleClient {
		t.Fatalf("expected role %q, got %q", types.RoleClient, sess.Role)
	}

	var userID uuid.UUID
	if err := conn.QueryRowContext(ctx, `SELECT id FROM users WHERE username = $1`, username).Scan(&userID); err != nil {
		t.Fatalf("select user id: %v", err)
	}
	if sess.UserID != userID {
		t.Fatalf("session user %s, stored user %s", sess.UserID, userID)
	}
}

func TestLoginRoleWithoutClientRow(t *testing.T) {
	conn := openTestDB(t)
	username := fmt.Sprintf("guest_%d", time.Now().UnixNano())

	hash, err := password.NewHasher(password.DefaultParams).Hash("guestpass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID := uuid.New()
	now := time.Now().UTC()
	if _, err := conn.ExecContext(ctx, `
		INSERT INTO users (id, created_at, updated_at, username, first_name, last_name, birthday)
		VALUES ($1, $2, $2, $3, 'Guest', 'User', '1990-01-01')`, userID, now, username); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	if _, err := conn.ExecContext(ctx, `
		INSERT INTO user_credentials (user_id, created_at, updated_at, password_hash)
		VALUES ($1, $2, $2, $3)`, userID, now, hash); err != nil {
		t.Fatalf("insert credentials: %v", err)
	}

	sess, err := newAuthService(conn).Login(ctx, username, "guestpass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if sess.Role != types.RoleGuest || sess.UserID != userID {
		t.Fatalf("unexpected session %+v", sess)
	}
}

func TestBrandUpdateAfterClockStep(t *testing.T) {
	conn := openTestDB(t)
	repo := store.NewBrandRepository(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// created_at in the future stands in for a wall clock that stepped back.
	future := time.Now().UTC().Add(time.Hour).Truncate(time.Microsecond)
	created, err := repo.Create(ctx, types.Brand{
		ID:        uuid.New(),
		Name:      fmt.Sprintf("Clock %d", time.Now().UnixNano()),
		CreatedAt: future,
		UpdatedAt: future,
	})
	if err != nil {
		t.Fatalf("create brand: %v", err)
	}

	updated, err := services.NewBrandService(repo, nil, "").UpdateBrand(ctx, created.ID, created.Name+" v2")
	if err != nil {
		t.Fatalf("update brand: %v", err)
	}
	if updated == nil {
		t.Fatalf("brand %s missing after update", created.ID)
	}
	if !updated.CreatedAt.Equal(future) {
		t.Fatalf("created_at changed: %v -> %v", future, updated.CreatedAt)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Fatalf("updated_at %v not after created_at %v", updated.UpdatedAt, updated.CreatedAt)
	}
}
