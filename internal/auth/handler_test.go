package auth_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/skyfalke/backoffice/internal/auth"
	"github.com/skyfalke/backoffice/internal/shared"
)

type stubRepo struct {
	user *auth.User
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStack(t *testing.T) (*auth.Service, http.Handler) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cretpass"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &stubRepo{user: &auth.User{
		ID:           1,
		Email:        "ops@skyfalke.com",
		FullName:     "Ops Admin",
		PasswordHash: string(hash),
		IsActive:     true,
	}}

	service := auth.NewService(repo, auth.NewTokenStore(client, time.Hour))
	handler := auth.NewHandler(newDiscardLogger(), service)

	r := chi.NewRouter()
	r.Route("/api/auth", handler.MountRoutes)
	return service, r
}

func TestLoginIssuesToken(t *testing.T) {
	service, router := newTestStack(t)

	body := `{"email":"ops@skyfalke.com","password":"s3cretpass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"token"`)

	_, token, _, err := service.Login(context.Background(), "ops@skyfalke.com", "s3cretpass")
	require.NoError(t, err)
	identity, err := service.Resolve(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, int64(1), identity.UserID)
	require.Equal(t, "ops@skyfalke.com", identity.Email)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	_, router := newTestStack(t)

	body := `{"email":"ops@skyfalke.com","password":"wrongpass1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginValidatesPayload(t *testing.T) {
	_, router := newTestStack(t)

	body := `{"email":"not-an-email","password":"short"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMeRequiresBearerToken(t *testing.T) {
	_, router := newTestStack(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer bogus-token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeReturnsUser(t *testing.T) {
	service, router := newTestStack(t)

	_, token, _, err := service.Login(context.Background(), "ops@skyfalke.com", "s3cretpass")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "ops@skyfalke.com")
	require.NotContains(t, rec.Body.String(), "password_hash")
}

func TestLogoutRevokesToken(t *testing.T) {
	service, router := newTestStack(t)

	_, token, _, err := service.Login(context.Background(), "ops@skyfalke.com", "s3cretpass")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	_, err = service.Resolve(context.Background(), token)
	require.Error(t, err)
}

func TestInactiveUserCannotLogin(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cretpass"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &stubRepo{user: &auth.User{
		ID:           2,
		Email:        "gone@skyfalke.com",
		PasswordHash: string(hash),
		IsActive:     false,
	}}
	service := auth.NewService(repo, auth.NewTokenStore(client, time.Hour))

	_, _, _, err = service.Login(context.Background(), "gone@skyfalke.com", "s3cretpass")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}
