// Package middleware, HTTP request pipeline'ına eklenen ara katmanları barındırır.
//
// Go'da middleware bir fonksiyondur:
//
//	func(next http.Handler) http.Handler
//
// "next" zincirdeki bir sonraki handler'dır. Middleware kendi işini yapar
// (token doğrula), sonra next'i çağırır. Hata varsa next çağrılmaz —
// request burada durur. Bu katman, unauthenticated transport ile koleksiyon
// operasyonları arasındaki TEK kapıdır: korumalı hiçbir handler çözümlenmiş
// kimlik olmadan çalışamaz.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/akinalp/mnemo/handlers"
	"github.com/akinalp/mnemo/pkg"
	"github.com/akinalp/mnemo/repository"
	"github.com/akinalp/mnemo/services"
)

// AuthMiddleware, JWT access token doğrulama middleware'ı.
type AuthMiddleware struct {
	authService services.AuthService
	userRepo    repository.UserRepository
}

// NewAuthMiddleware, constructor.
func NewAuthMiddleware(authService services.AuthService, userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		userRepo:    userRepo,
	}
}

// Require, access token zorunlu kılan middleware.
//
// Akış:
// 1. "Authorization: Bearer <token>" header'ını oku
// 2. ValidateAccessToken ile doğrula — refresh token burada REDDEDİLİR
// 3. Kullanıcıyı DB'den getir — token geçerli ama kullanıcı silinmiş olabilir
// 4. Kullanıcıyı context'e ekle, next handler'ı çağır
//
// Her başarısızlık 401'dir; eksik header, bozuk token, yanlış tip ve
// silinmiş kullanıcı client açısından ayırt edilemez.
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authorization header required")
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "invalid authorization format, use: Bearer <token>")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := m.authService.ValidateAccessToken(tokenString)
		if err != nil {
			pkg.Error(w, err)
			return
		}

		user, err := m.userRepo.GetByID(r.Context(), claims.UserID)
		if err != nil {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "invalid token")
			return
		}

		// Password hash context'te taşınmamalı
		user.PasswordHash = ""

		ctx := context.WithValue(r.Context(), handlers.UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
