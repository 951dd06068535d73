package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/akinalp/mnemo/models"
	"github.com/akinalp/mnemo/pkg"
	"github.com/akinalp/mnemo/pkg/genai"
	"github.com/akinalp/mnemo/repository"
	"github.com/google/uuid"
)

// PageSize, listeleme sayfa boyutu — sözleşme gereği sabit.
const PageSize = 10

// FlashcardService, fiş kartı koleksiyonunun business logic'i.
//
// Her operasyon çözümlenmiş sahibin ID'si ile çağrılır; sahiplik filtresi
// repository katmanında SQL predicate'ine gömülüdür. Bu katman kimlik
// doğrulaması YAPMAZ — middleware'den geçmemiş hiçbir istek buraya ulaşamaz.
type FlashcardService interface {
	Create(ctx context.Context, ownerID string, req *models.CreateFlashcardRequest) (*models.Flashcard, error)
	// Generate, metinden kart üretir ve batch'i atomik olarak kaydeder.
	Generate(ctx context.Context, ownerID string, req *models.GenerateRequest) ([]models.Flashcard, error)
	List(ctx context.Context, ownerID string, page int) (*models.FlashcardPage, error)
	Topics(ctx context.Context, ownerID string) ([]string, error)
	ByTopic(ctx context.Context, ownerID, topic string) ([]models.Flashcard, error)
	Update(ctx context.Context, ownerID, id string, req *models.UpdateFlashcardRequest) (*models.Flashcard, error)
	// Review, kartı şimdi çalışıldı olarak işaretler ve zorluğu günceller.
	Review(ctx context.Context, ownerID, id string, req *models.ReviewRequest) (*models.Flashcard, error)
	Delete(ctx context.Context, ownerID, id string) error
	DeleteTopic(ctx context.Context, ownerID, topic string) error
}

// flashcardService, FlashcardService implementasyonu.
type flashcardService struct {
	cardRepo  repository.FlashcardRepository
	generator genai.Generator
}

// NewFlashcardService, constructor.
func NewFlashcardService(cardRepo repository.FlashcardRepository, generator genai.Generator) FlashcardService {
	return &flashcardService{
		cardRepo:  cardRepo,
		generator: generator,
	}
}

// Create, tek bir kartı manuel olarak oluşturur.
func (s *flashcardService) Create(ctx context.Context, ownerID string, req *models.CreateFlashcardRequest) (*models.Flashcard, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	card := &models.Flashcard{
		ID:              uuid.NewString(),
		Question:        req.Question,
		Answer:          req.Answer,
		Topic:           req.Topic,
		DifficultyLevel: models.DifficultyMin,
		UserID:          ownerID,
	}

	if err := s.cardRepo.Create(ctx, card); err != nil {
		return nil, err
	}

	return card, nil
}

// Generate, üretim akışının tamamı:
// 1. İstek sınırlarını doğrula (metin 10-50000, count 1-30)
// 2. Gemini'yi çağır — başarısızlık retry'sız yüzeye çıkar (ErrGateway)
// 3. Deck'i kartlara çevir, batch'i TEK transaction ile kaydet
//
// Gateway bozuk/eksik çıktı verirse genai katmanı zaten error üretmiştir;
// persistence hatası durumunda transaction rollback olur — her iki durumda
// da DB'ye kısmi batch yazılmaz, bellekteki kartlar atılır.
func (s *flashcardService) Generate(ctx context.Context, ownerID string, req *models.GenerateRequest) ([]models.Flashcard, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	deck, err := s.generator.Generate(ctx, req.Text, req.Count)
	if err != nil {
		return nil, err
	}

	cards := make([]models.Flashcard, 0, len(deck.Cards))
	for _, c := range deck.Cards {
		cards = append(cards, models.Flashcard{
			ID:              uuid.NewString(),
			Question:        c.Question,
			Answer:          c.Answer,
			Topic:           deck.Topic,
			DifficultyLevel: models.DifficultyMin,
			UserID:          ownerID,
		})
	}

	if err := s.cardRepo.CreateBatch(ctx, cards); err != nil {
		return nil, err
	}

	log.Printf("[flashcards] generated batch: owner=%s topic=%q cards=%d", ownerID, deck.Topic, len(cards))
	return cards, nil
}

// List, 1-indexed sayfa döner.
//
// page < 1 veya son sayfanın ötesi HATA DEĞİLDİR: aynı toplamlarla boş
// results döner. Toplamlar her durumda hesaplanır — client sayfa
// numaralarını toplamlar üzerinden düzeltebilir.
func (s *flashcardService) List(ctx context.Context, ownerID string, page int) (*models.FlashcardPage, error) {
	count, err := s.cardRepo.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	pages := (count + PageSize - 1) / PageSize // ceiling(count/PageSize)

	result := &models.FlashcardPage{
		Count:       count,
		Pages:       pages,
		CurrentPage: page,
		Results:     []models.Flashcard{}, // nil değil → JSON'da [] render edilir
	}

	if page < 1 || page > pages {
		return result, nil
	}

	cards, err := s.cardRepo.ListPage(ctx, ownerID, (page-1)*PageSize, PageSize)
	if err != nil {
		return nil, err
	}
	if cards != nil {
		result.Results = cards
	}

	return result, nil
}

// Topics, sahibin distinct topic listesini döner (her topic bir kez).
func (s *flashcardService) Topics(ctx context.Context, ownerID string) ([]string, error) {
	topics, err := s.cardRepo.ListTopics(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if topics == nil {
		topics = []string{}
	}
	return topics, nil
}

// ByTopic, topic'i birebir eşleşen kartları döner.
// Boş veya eşleşmeyen topic boş liste üretir, hata değil.
func (s *flashcardService) ByTopic(ctx context.Context, ownerID, topic string) ([]models.Flashcard, error) {
	if topic == "" {
		return []models.Flashcard{}, nil
	}

	cards, err := s.cardRepo.ListByTopic(ctx, ownerID, topic)
	if err != nil {
		return nil, err
	}
	if cards == nil {
		cards = []models.Flashcard{}
	}
	return cards, nil
}

// Update, kısmi güncelleme: önce sahiplik filtresiyle kartı getir, sadece
// gönderilen alanları merge et, tamamını geri yaz. Kart başkasına aitse
// GetByID zaten ErrNotFound üretir — "forbidden" diye ayrı bir durum yok.
func (s *flashcardService) Update(ctx context.Context, ownerID, id string, req *models.UpdateFlashcardRequest) (*models.Flashcard, error) {
	if req.IsEmpty() {
		return nil, fmt.Errorf("%w: no fields to update", pkg.ErrBadRequest)
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	card, err := s.cardRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if req.Question != nil {
		card.Question = strings.TrimSpace(*req.Question)
	}
	if req.Answer != nil {
		card.Answer = strings.TrimSpace(*req.Answer)
	}
	if req.Topic != nil {
		card.Topic = strings.TrimSpace(*req.Topic)
	}
	if req.LastReviewed != nil {
		card.LastReviewed = req.LastReviewed
	}
	if req.DifficultyLevel != nil {
		card.DifficultyLevel = *req.DifficultyLevel
	}

	if err := s.cardRepo.Update(ctx, ownerID, card); err != nil {
		return nil, err
	}

	return card, nil
}

// Review, kartı "şimdi çalışıldı" olarak işaretler.
func (s *flashcardService) Review(ctx context.Context, ownerID, id string, req *models.ReviewRequest) (*models.Flashcard, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	card, err := s.cardRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	card.LastReviewed = &now
	card.DifficultyLevel = req.DifficultyLevel

	if err := s.cardRepo.Update(ctx, ownerID, card); err != nil {
		return nil, err
	}

	return card, nil
}

// Delete, sahibin tek bir kartını siler.
func (s *flashcardService) Delete(ctx context.Context, ownerID, id string) error {
	return s.cardRepo.Delete(ctx, ownerID, id)
}

// DeleteTopic, topic'in tüm kartlarını siler. Sıfır eşleşme de başarıdır.
func (s *flashcardService) DeleteTopic(ctx context.Context, ownerID, topic string) error {
	affected, err := s.cardRepo.DeleteTopic(ctx, ownerID, topic)
	if err != nil {
		return err
	}

	log.Printf("[flashcards] topic deleted: owner=%s topic=%q cards=%d", ownerID, topic, affected)
	return nil
}
