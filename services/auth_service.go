// Package services, business logic katmanını barındırır.
//
// Service Layer: Handler (HTTP) ile Repository (DB) arasında oturan katman.
// Tüm iş kuralları burada yaşar: şifre hash'leme, JWT üretimi/doğrulaması,
// sahiplik kuralları, üretim akışı.
//
// Service ASLA http.Request/Response bilmez — sadece domain modelleri alır/verir.
// Service ASLA doğrudan SQL çalıştırmaz — Repository interface'i kullanır.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akinalp/mnemo/models"
	"github.com/akinalp/mnemo/pkg"
	"github.com/akinalp/mnemo/repository"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService interface'i — dışarıya açık API.
// Handler ve middleware bu interface'e bağımlıdır, concrete struct'a değil.
type AuthService interface {
	Register(ctx context.Context, req *models.CreateUserRequest) (*AuthTokens, error)
	Login(ctx context.Context, req *models.LoginRequest) (*AuthTokens, error)
	// Refresh, geçerli bir refresh token karşılığında YENİ bir çift döner
	// (rotation): eski refresh token'ın kalan ömrü kullanılmaz.
	Refresh(ctx context.Context, refreshToken string) (*AuthTokens, error)
	// ValidateAccessToken, Bearer token'ı doğrular — tip access olmalı.
	ValidateAccessToken(tokenString string) (*models.TokenClaims, error)
}

// AuthTokens, login/register/refresh sonrası dönen token çifti.
type AuthTokens struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         models.User `json:"user"`
}

// bcryptCost — bcrypt work factor. 12, 2026 donanımında login başına
// ~çift yüz ms civarı; brute-force'u anlamlı yavaşlatır.
const bcryptCost = 12

// authService, AuthService interface'inin implementasyonu.
//
// Token'lar stateless'tır: refresh token da imzalı bir JWT'dir, session
// tablosu yoktur. Geçerlilik = imza + expiry + tip claim'i. jwtSecret
// startup'ta bir kez yüklenir ve süreç boyunca immutable kalır — bu yüzden
// token üretimi/doğrulaması paylaşılan mutable state içermez ve keyfî
// concurrency altında güvenlidir.
type authService struct {
	userRepo   repository.UserRepository
	jwtSecret  []byte
	accessExp  time.Duration
	refreshExp time.Duration
}

// NewAuthService, constructor.
func NewAuthService(
	userRepo repository.UserRepository,
	jwtSecret string,
	accessExpMinutes int,
	refreshExpDays int,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		accessExp:  time.Duration(accessExpMinutes) * time.Minute,
		refreshExp: time.Duration(refreshExpDays) * 24 * time.Hour,
	}
}

// Register, yeni kullanıcı kaydı oluşturur ve token çifti döner.
func (s *authService) Register(ctx context.Context, req *models.CreateUserRequest) (*AuthTokens, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	// bcrypt her çağrıda rastgele salt üretir — aynı şifrenin iki hash'i
	// birbirinden farklıdır ama ikisi de doğrulanır.
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err // ErrAlreadyExists olabilir
	}

	return s.generateTokens(user)
}

// Login, email + şifre ile giriş yapar.
//
// "Email yok" ile "şifre yanlış" AYNI hatayı üretir — hangi kontrolün
// patladığı söylenmez, aksi halde kayıtlı email'ler enumerate edilebilir.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*AuthTokens, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid email or password", pkg.ErrUnauthorized)
		}
		return nil, err
	}

	// CompareHashAndPassword sabit zamanlı karşılaştırma yapar ve bozuk
	// hash'te de sadece error döner — panic yok, timing farkı yok.
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", pkg.ErrUnauthorized)
	}

	return s.generateTokens(user)
}

// Refresh, refresh token'ı doğrular ve yeni bir çift üretir (rotation).
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	claims, err := s.decodeToken(refreshToken, models.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	// Token geçerli ama kullanıcı bu arada silinmiş olabilir
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid token", pkg.ErrUnauthorized)
		}
		return nil, err
	}

	return s.generateTokens(user)
}

// ValidateAccessToken, JWT access token'ı doğrular ve claims'i döner.
// Refresh token burada GEÇMEZ — tip claim'i access olmalı.
func (s *authService) ValidateAccessToken(tokenString string) (*models.TokenClaims, error) {
	return s.decodeToken(tokenString, models.TokenTypeAccess)
}

// ─── Private Helpers ───

// generateTokens, access + refresh çiftini imzalar.
func (s *authService) generateTokens(user *models.User) (*AuthTokens, error) {
	accessToken, err := s.issueToken(user.ID, models.TokenTypeAccess, s.accessExp)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.issueToken(user.ID, models.TokenTypeRefresh, s.refreshExp)
	if err != nil {
		return nil, err
	}

	sanitized := *user
	sanitized.PasswordHash = ""

	return &AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         sanitized,
	}, nil
}

// issueToken, verilen tip ve ömürle tek bir JWT imzalar.
// Expiry UTC bazlı NumericDate'tir — jwt kütüphanesi karşılaştırmayı
// leeway'siz (sıfır tolerans) yapar.
func (s *authService) issueToken(userID string, tokenType models.TokenType, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := &models.TokenClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "mnemo",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}

	return signed, nil
}

// decodeToken, imzayı ve expiry'yi doğrular, sonra tip claim'ini kontrol eder.
//
// Bütün başarısızlıklar (bozuk format, yanlış imza, süresi dolmuş, yanlış
// tip) aynı "invalid token" hatasına düşer — client hangi kontrolün
// patladığını öğrenemez. decode hiçbir durumda panic etmez.
func (s *authService) decodeToken(tokenString string, expected models.TokenType) (*models.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(token *jwt.Token) (any, error) {
		// alg confusion saldırısına karşı: sadece HMAC ailesi kabul edilir.
		// "none" veya RS256 header'lı token'lar burada reddedilir.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token", pkg.ErrUnauthorized)
	}

	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", pkg.ErrUnauthorized)
	}

	// Tip kontrolü decode'un parçası DEĞİL, kullanım yerinin sorumluluğu —
	// ama her kullanım yeri bu fonksiyondan geçtiği için burada merkezi yapılır.
	if claims.TokenType != expected {
		return nil, fmt.Errorf("%w: invalid token", pkg.ErrUnauthorized)
	}

	return claims, nil
}
