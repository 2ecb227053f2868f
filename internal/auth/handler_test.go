package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/advotecate/advotecate/internal/auth"
	"github.com/advotecate/advotecate/internal/rbac"
	"github.com/advotecate/advotecate/internal/session"
	"github.com/advotecate/advotecate/internal/token"
)

type stubRepo struct {
	accounts map[string]*auth.Account
	orgs     map[string][]string
	grants   map[string][]string
}

func (s *stubRepo) FindByEmail(_ context.Context, email string) (*auth.Account, error) {
	account, ok := s.accounts[email]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return account, nil
}

func (s *stubRepo) Organizations(_ context.Context, userID string) ([]string, error) {
	return s.orgs[userID], nil
}

func (s *stubRepo) CustomGrants(_ context.Context, userID string) ([]string, error) {
	return s.grants[userID], nil
}

type authFixture struct {
	router   chi.Router
	sessions *session.Manager
	tokens   *token.Issuer
	repo     *stubRepo
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := session.NewManager(session.NewRedisStore(client), session.Config{
		Namespace:     "advotecate",
		TTL:           24 * time.Hour,
		InactivityMax: 2 * time.Hour,
		MaxPerUser:    5,
	}, nil)

	tokens, err := token.NewIssuer(token.Config{
		Secret:     "test-secret-test-secret-test-secret",
		Issuer:     "advotecate",
		Audience:   "advotecate-api",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	})
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse battery"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &stubRepo{
		accounts: map[string]*auth.Account{
			"treasurer@advotecate.test": {
				ID:           "u1",
				Email:        "treasurer@advotecate.test",
				PasswordHash: string(hash),
				Role:         "org_treasurer",
				KYCStatus:    "verified",
				IsActive:     true,
			},
			"disabled@advotecate.test": {
				ID:           "u2",
				Email:        "disabled@advotecate.test",
				PasswordHash: string(hash),
				Role:         "donor",
				IsActive:     false,
			},
		},
		orgs:   map[string][]string{"u1": {"org-1", "org-2"}},
		grants: map[string][]string{"u1": {"report:export"}},
	}

	handler := auth.NewHandler(nil, auth.NewService(repo), sessions, tokens, nil)
	router := chi.NewRouter()
	router.Route("/auth", handler.MountRoutes)

	return &authFixture{router: router, sessions: sessions, tokens: tokens, repo: repo}
}

func (f *authFixture) login(t *testing.T, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

type tokenPayload struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

func TestLoginIssuesTokensAndSession(t *testing.T) {
	f := newAuthFixture(t)

	rec := f.login(t, "treasurer@advotecate.test", "correct horse battery")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload tokenPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "Bearer", payload.TokenType)
	assert.Equal(t, int((15 * time.Minute).Seconds()), payload.ExpiresIn)
	require.NotEmpty(t, payload.AccessToken)
	require.NotEmpty(t, payload.RefreshToken)

	claims, err := f.tokens.Verify(payload.AccessToken, token.TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "org_treasurer", claims.Role)
	assert.Equal(t, "verified", claims.KYCStatus)
	assert.Equal(t, []string{"org-1", "org-2"}, claims.Organizations)
	assert.Equal(t, []string{"report:export"}, claims.Permissions)
	require.NotEmpty(t, claims.SessionID)

	sess, err := f.sessions.Get(context.Background(), claims.SessionID, "192.0.2.1:1234", "")
	require.NoError(t, err)
	assert.Equal(t, "u1", sess.UserID)
	assert.Equal(t, "org_treasurer", sess.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newAuthFixture(t)

	rec := f.login(t, "treasurer@advotecate.test", "wrong password!")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.login(t, "nobody@advotecate.test", "correct horse battery")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.login(t, "disabled@advotecate.test", "correct horse battery")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginValidatesRequestBody(t *testing.T) {
	f := newAuthFixture(t)

	rec := f.login(t, "not-an-email", "correct horse battery")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte("{")))
	out := httptest.NewRecorder()
	f.router.ServeHTTP(out, req)
	assert.Equal(t, http.StatusBadRequest, out.Code)
}

func TestRefreshRotatesAccessToken(t *testing.T) {
	f := newAuthFixture(t)

	rec := f.login(t, "treasurer@advotecate.test", "correct horse battery")
	require.Equal(t, http.StatusOK, rec.Code)
	var login tokenPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))

	// Membership changes after login must show up in the refreshed token.
	f.repo.orgs["u1"] = []string{"org-1"}

	body, err := json.Marshal(map[string]string{"refresh_token": login.RefreshToken})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", bytes.NewReader(body))
	out := httptest.NewRecorder()
	f.router.ServeHTTP(out, req)
	require.Equal(t, http.StatusOK, out.Code)

	var refreshed tokenPayload
	require.NoError(t, json.Unmarshal(out.Body.Bytes(), &refreshed))
	require.NotEmpty(t, refreshed.AccessToken)
	assert.Empty(t, refreshed.RefreshToken)

	claims, err := f.tokens.Verify(refreshed.AccessToken, token.TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, []string{"org-1"}, claims.Organizations)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	f := newAuthFixture(t)

	rec := f.login(t, "treasurer@advotecate.test", "correct horse battery")
	require.Equal(t, http.StatusOK, rec.Code)
	var login tokenPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))

	body, err := json.Marshal(map[string]string{"refresh_token": login.AccessToken})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", bytes.NewReader(body))
	out := httptest.NewRecorder()
	f.router.ServeHTTP(out, req)
	assert.Equal(t, http.StatusUnauthorized, out.Code)
}

func TestLogoutDestroysSession(t *testing.T) {
	f := newAuthFixture(t)

	rec := f.login(t, "treasurer@advotecate.test", "correct horse battery")
	require.Equal(t, http.StatusOK, rec.Code)
	var login tokenPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	out := httptest.NewRecorder()
	f.router.ServeHTTP(out, req)
	require.Equal(t, http.StatusNoContent, out.Code)

	// The refresh token still verifies but its session is gone.
	body, err := json.Marshal(map[string]string{"refresh_token": login.RefreshToken})
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, "/auth/refresh", bytes.NewReader(body))
	out = httptest.NewRecorder()
	f.router.ServeHTTP(out, req)
	assert.Equal(t, http.StatusUnauthorized, out.Code)
}

func TestAuthenticatorMiddleware(t *testing.T) {
	f := newAuthFixture(t)

	rec := f.login(t, "treasurer@advotecate.test", "correct horse battery")
	require.Equal(t, http.StatusOK, rec.Code)
	var login tokenPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))

	authn := auth.Authenticator{Tokens: f.tokens, Sessions: f.sessions}
	var seen rbac.User
	protected := authn.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := rbac.UserFromContext(r.Context())
		require.True(t, ok)
		seen = user
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/me/permissions", nil)
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	out := httptest.NewRecorder()
	protected.ServeHTTP(out, req)
	require.Equal(t, http.StatusOK, out.Code)
	assert.Equal(t, "u1", seen.ID)
	assert.Equal(t, []string{"org_treasurer"}, seen.Roles)
	assert.Equal(t, []string{"org-1", "org-2"}, seen.Organizations)
	require.Len(t, seen.CustomPermissions, 1)
	assert.Equal(t, "report", seen.CustomPermissions[0].Resource)
	assert.Equal(t, "export", seen.CustomPermissions[0].Action)

	req = httptest.NewRequest(http.MethodGet, "/me/permissions", nil)
	out = httptest.NewRecorder()
	protected.ServeHTTP(out, req)
	assert.Equal(t, http.StatusUnauthorized, out.Code)

	require.NoError(t, f.sessions.DestroyAll(context.Background(), "u1"))
	req = httptest.NewRequest(http.MethodGet, "/me/permissions", nil)
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	out = httptest.NewRecorder()
	protected.ServeHTTP(out, req)
	assert.Equal(t, http.StatusUnauthorized, out.Code)
}
