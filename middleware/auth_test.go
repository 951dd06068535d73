package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/akinalp/mnemo/handlers"
	"github.com/akinalp/mnemo/models"
	"github.com/akinalp/mnemo/pkg"
	"github.com/akinalp/mnemo/repository"
	"github.com/akinalp/mnemo/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUserRepo — middleware testleri için minimal UserRepository.
type fakeUserRepo struct {
	users map[string]*models.User
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	if f.users == nil {
		f.users = make(map[string]*models.User)
	}
	user.ID = "user-" + user.Username
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, pkg.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, pkg.ErrNotFound
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return pkg.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

// setupMiddleware, gerçek AuthService + fake repo ile middleware ve
// geçerli bir token çifti kurar.
func setupMiddleware(t *testing.T) (*AuthMiddleware, *fakeUserRepo, *services.AuthTokens) {
	t.Helper()

	repo := &fakeUserRepo{}
	svc := services.NewAuthService(repo, "middleware-secret", 15, 7)

	tokens, err := svc.Register(context.Background(), &models.CreateUserRequest{
		Username: "mw_user",
		Email:    "mw@test.com",
		Password: "password123",
	})
	require.NoError(t, err)

	return NewAuthMiddleware(svc, repo), repo, tokens
}

// protectedProbe, middleware'den geçen isteğin context'indeki kullanıcıyı
// yakalayan basit bir handler döner.
func protectedProbe(captured **models.User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := r.Context().Value(handlers.UserContextKey).(*models.User); ok {
			*captured = u
		}
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(t *testing.T, mw *AuthMiddleware, authHeader string) (*httptest.ResponseRecorder, *models.User) {
	t.Helper()

	var captured *models.User
	handler := mw.Require(protectedProbe(&captured))

	req := httptest.NewRequest(http.MethodGet, "/api/flashcards", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec, captured
}

func TestRequireHappyPath(t *testing.T) {
	t.Parallel()

	mw, _, tokens := setupMiddleware(t)

	rec, user := doRequest(t, mw, "Bearer "+tokens.AccessToken)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, user, "user must be injected into context")
	assert.Equal(t, tokens.User.ID, user.ID)
	assert.Empty(t, user.PasswordHash, "hash must not travel in context")
}

func TestRequireMissingHeader(t *testing.T) {
	t.Parallel()

	mw, _, _ := setupMiddleware(t)

	rec, user := doRequest(t, mw, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, user, "next handler must not run")
}

func TestRequireBadScheme(t *testing.T) {
	t.Parallel()

	mw, _, tokens := setupMiddleware(t)

	rec, user := doRequest(t, mw, "Basic "+tokens.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, user)
}

func TestRequireGarbageToken(t *testing.T) {
	t.Parallel()

	mw, _, _ := setupMiddleware(t)

	rec, user := doRequest(t, mw, "Bearer not.a.token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, user)
}

func TestRequireRejectsRefreshToken(t *testing.T) {
	t.Parallel()

	// Refresh token korumalı route'larda GEÇMEZ — tip claim'i access değil
	mw, _, tokens := setupMiddleware(t)

	rec, user := doRequest(t, mw, "Bearer "+tokens.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, user)
}

func TestRequireDeletedUser(t *testing.T) {
	t.Parallel()

	// Token geçerli ama kullanıcı bu arada silinmiş — 401, 404 değil
	mw, repo, tokens := setupMiddleware(t)
	require.NoError(t, repo.Delete(context.Background(), tokens.User.ID))

	rec, user := doRequest(t, mw, "Bearer "+tokens.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, user)
}

func TestRequireExpiredToken(t *testing.T) {
	t.Parallel()

	repo := &fakeUserRepo{}
	// Negatif expiry ile üretilen token doğrulamada süresi dolmuş sayılır
	expiredSvc := services.NewAuthService(repo, "middleware-secret", -1, 7)
	tokens, err := expiredSvc.Register(context.Background(), &models.CreateUserRequest{
		Username: "expired_user",
		Email:    "expired@test.com",
		Password: "password123",
	})
	require.NoError(t, err)

	mw := NewAuthMiddleware(expiredSvc, repo)
	rec, user := doRequest(t, mw, "Bearer "+tokens.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, user)
}
