package repository

import (
	"context"

	"github.com/akinalp/mnemo/models"
)

// FlashcardRepository, fiş kartı veritabanı işlemleri için interface.
//
// Her okuma/yazma operasyonu sahip (ownerID) ile çağrılır ve sahiplik
// SQL predicate'inin içine gömülüdür — fetch sonrası yapılan opsiyonel bir
// kontrol DEĞİLDİR. Başkasının kaydına erişim pkg.ErrNotFound üretir;
// "forbidden" gibi ayrı bir sonuç yoktur, kaydın varlığı sızdırılmaz.
type FlashcardRepository interface {
	// Create, tek bir kart kaydeder; created_at DB tarafından atanır.
	Create(ctx context.Context, card *models.Flashcard) error
	// CreateBatch, kartların tamamını TEK transaction içinde kaydeder:
	// ya hepsi commit olur ya hiçbiri.
	CreateBatch(ctx context.Context, cards []models.Flashcard) error
	GetByID(ctx context.Context, ownerID, id string) (*models.Flashcard, error)
	// ListPage, creation sırasıyla (created_at, id) bir dilim döner.
	ListPage(ctx context.Context, ownerID string, offset, limit int) ([]models.Flashcard, error)
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	// ListTopics, sahibin distinct ve boş olmayan topic değerlerini döner.
	ListTopics(ctx context.Context, ownerID string) ([]string, error)
	// ListByTopic, topic'i birebir (case-sensitive) eşleşen kartları döner.
	ListByTopic(ctx context.Context, ownerID, topic string) ([]models.Flashcard, error)
	// Update, kartın mutable kolonlarını yazar (merge service'te yapılır).
	Update(ctx context.Context, ownerID string, card *models.Flashcard) error
	Delete(ctx context.Context, ownerID, id string) error
	// DeleteTopic, topic'e birebir eşleşen tüm kartları siler ve silinen
	// satır sayısını döner. Sıfır eşleşme hata değildir.
	DeleteTopic(ctx context.Context, ownerID, topic string) (int64, error)
}
