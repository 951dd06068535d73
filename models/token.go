package models

import "github.com/golang-jwt/jwt/v5"

// TokenType, bir JWT'nin hangi amaçla kullanılabileceğini ayırt eder.
//
// Access ve refresh token yapısal olarak aynı (ikisi de imzalı JWT) ama
// ASLA birbirinin yerine geçemez: middleware access bekler, refresh
// endpoint'i refresh bekler. Ayrım bu claim üzerinden yapılır.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// TokenClaims, JWT token'ın içindeki veriler (payload).
//
// Token stateless'tır: server tarafında session kaydı tutulmaz.
// Geçerlilik yalnızca imza + expiry fonksiyonudur — revocation listesi yok
// (kabul edilen tradeoff: sızan token süresi dolana kadar geçerli kalır,
// bu yüzden access süresi kısa tutulur).
//
// Bu struct models paketinde tanımlıdır çünkü birden fazla katman
// (services, middleware) kullanır — circular dependency'yi önler.
type TokenClaims struct {
	UserID    string    `json:"user_id"`
	TokenType TokenType `json:"type"`
	jwt.RegisteredClaims
}
