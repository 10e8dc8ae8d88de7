package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cargoline/apiserver/config"
	"github.com/cargoline/apiserver/internal/session"
	"github.com/cargoline/apiserver/types"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (types.Session, error) {
	args := m.Called(ctx, username, password)
	return args.Get(0).(types.Session), args.Error(1)
}

func (m *MockAuthService) Register(ctx context.Context, reg types.Registration) error {
	args := m.Called(ctx, reg)
	return args.Error(0)
}

type MockBrandService struct {
	mock.Mock
}

func (m *MockBrandService) GetAllBrands(ctx context.Context) ([]types.Brand, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Brand), args.Error(1)
}

func (m *MockBrandService) GetBrand(ctx context.Context, id uuid.UUID) (*types.Brand, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Brand), args.Error(1)
}

func (m *MockBrandService) CreateBrand(ctx context.Context, name string) (types.Brand, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(types.Brand), args.Error(1)
}

func (m *MockBrandService) UpdateBrand(ctx context.Context, id uuid.UUID, name string) (*types.Brand, error) {
	args := m.Called(ctx, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Brand), args.Error(1)
}

type testAPI struct {
	router   *chi.Mux
	auth     *MockAuthService
	brands   *MockBrandService
	sessions *session.Manager
}

// newTestAPI wires the routers the same way the server does.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	sessions, err := session.NewManager(session.NewMemoryStore(), config.SessionConfig{
		Secret:     "handler-test-secret",
		CookieName: "session",
		TTL:        time.Hour,
	})
	require.NoError(t, err)

	api := &testAPI{
		router:   chi.NewRouter(),
		auth:     new(MockAuthService),
		brands:   new(MockBrandService),
		sessions: sessions,
	}
	api.router.Use(sessions.Load)
	api.router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, api.auth, sessions)
	})
	api.router.Route("/brands", func(r chi.Router) {
		BrandRouter(r, api.brands)
	})
	return api
}

// cookieFor returns a session cookie carrying role.
func (api *testAPI) cookieFor(t *testing.T, role types.Role) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, api.sessions.Issue(rec, httptest.NewRequest(http.MethodPost, "/", nil), types.Session{
		UserID: uuid.New(),
		Role:   role,
	}))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func (api *testAPI) do(method, target string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

var errBoom = errors.New("boom")
