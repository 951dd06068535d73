// Package repository, veritabanı erişim katmanını tanımlar.
//
// Repository Pattern: veritabanı işlemlerini (CRUD) soyutlayan katman.
// Service katmanı doğrudan SQL yazmaz — repository interface'i üzerinden
// çalışır. Interface sayesinde:
// 1. Test: Mock repository yazarak DB olmadan test edilebilir
// 2. Esneklik: SQLite'tan başka bir engine'e geçiş tek implementasyon değiştirir
// 3. Dependency Inversion: Service concrete struct'a değil interface'e bağımlı
package repository

import (
	"context"

	"github.com/akinalp/mnemo/models"
)

// UserRepository, kullanıcı veritabanı işlemleri için interface.
type UserRepository interface {
	// Create, yeni kullanıcı kaydeder; id ve created_at DB tarafından atanır.
	// Duplicate username/email → pkg.ErrAlreadyExists.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Delete, kullanıcıyı siler; FK cascade ile tüm kartları da gider.
	Delete(ctx context.Context, id string) error
}
