package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Üretim isteği sınırları — Gemini'ye gönderilecek metin ve istenen kart sayısı.
const (
	GenerateTextMinLen = 10
	GenerateTextMaxLen = 50000
	GenerateCountMin   = 1
	GenerateCountMax   = 30
	GenerateCountDflt  = 10

	DifficultyMin = 1
	DifficultyMax = 5
)

// Flashcard, bir kullanıcıya ait tek bir soru-cevap kartını temsil eder.
//
// Topic normalize edilmiş ayrı bir entity DEĞİLDİR — serbest metin bir
// attribute'tur. "Koleksiyonlar" bu alan üzerinden distinct sorgusuyla
// türetilir. Eşleşme case-sensitive'dir: "Biologia" ile "biologia" farklıdır.
type Flashcard struct {
	ID              string     `json:"id"`
	Question        string     `json:"question"`
	Answer          string     `json:"answer"`
	Topic           string     `json:"topic"`
	LastReviewed    *time.Time `json:"last_reviewed"` // nil → hiç çalışılmamış
	DifficultyLevel int        `json:"difficulty_level"`
	UserID          string     `json:"user_id"`
	CreatedAt       time.Time  `json:"created_at"`
}

// CreateFlashcardRequest, tek kart için manuel oluşturma isteği.
type CreateFlashcardRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Topic    string `json:"topic"`
}

// Validate, CreateFlashcardRequest alanlarını kontrol eder.
func (r *CreateFlashcardRequest) Validate() error {
	r.Question = strings.TrimSpace(r.Question)
	r.Answer = strings.TrimSpace(r.Answer)
	r.Topic = strings.TrimSpace(r.Topic)

	if r.Question == "" {
		return fmt.Errorf("question is required")
	}
	if r.Answer == "" {
		return fmt.Errorf("answer is required")
	}
	if r.Topic == "" {
		return fmt.Errorf("topic is required")
	}
	return nil
}

// GenerateRequest, metinden kart üretme isteği.
// Count gönderilmezse (JSON'da yoksa 0 gelir) varsayılan 10 kullanılır.
type GenerateRequest struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

// Validate, GenerateRequest sınırlarını kontrol eder ve Count default'unu uygular.
func (r *GenerateRequest) Validate() error {
	if r.Count == 0 {
		r.Count = GenerateCountDflt
	}
	if r.Count < GenerateCountMin || r.Count > GenerateCountMax {
		return fmt.Errorf("count must be between %d and %d", GenerateCountMin, GenerateCountMax)
	}

	textLen := utf8.RuneCountInString(r.Text)
	if textLen < GenerateTextMinLen || textLen > GenerateTextMaxLen {
		return fmt.Errorf("text must be between %d and %d characters", GenerateTextMinLen, GenerateTextMaxLen)
	}

	return nil
}

// UpdateFlashcardRequest, kısmi güncelleme (PATCH) isteği.
//
// Pointer field'lar "gönderilmedi" (nil) ile "boş gönderildi" ayrımını yapar:
// nil olan alanlara DOKUNULMAZ, sadece gelen alanlar güncellenir.
type UpdateFlashcardRequest struct {
	Question        *string    `json:"question"`
	Answer          *string    `json:"answer"`
	Topic           *string    `json:"topic"`
	LastReviewed    *time.Time `json:"last_reviewed"`
	DifficultyLevel *int       `json:"difficulty_level"`
}

// Validate, gönderilen alanların geçerli olduğunu kontrol eder.
func (r *UpdateFlashcardRequest) Validate() error {
	if r.Question != nil && strings.TrimSpace(*r.Question) == "" {
		return fmt.Errorf("question cannot be empty")
	}
	if r.Answer != nil && strings.TrimSpace(*r.Answer) == "" {
		return fmt.Errorf("answer cannot be empty")
	}
	if r.Topic != nil && strings.TrimSpace(*r.Topic) == "" {
		return fmt.Errorf("topic cannot be empty")
	}
	if r.DifficultyLevel != nil && (*r.DifficultyLevel < DifficultyMin || *r.DifficultyLevel > DifficultyMax) {
		return fmt.Errorf("difficulty_level must be between %d and %d", DifficultyMin, DifficultyMax)
	}
	return nil
}

// IsEmpty, hiçbir alan gönderilmediyse true döner — boş PATCH reddedilir.
func (r *UpdateFlashcardRequest) IsEmpty() bool {
	return r.Question == nil && r.Answer == nil && r.Topic == nil &&
		r.LastReviewed == nil && r.DifficultyLevel == nil
}

// ReviewRequest, bir kartı "çalışıldı" olarak işaretleme isteği.
type ReviewRequest struct {
	DifficultyLevel int `json:"difficulty_level"`
}

// Validate, zorluk seviyesini kontrol eder.
func (r *ReviewRequest) Validate() error {
	if r.DifficultyLevel < DifficultyMin || r.DifficultyLevel > DifficultyMax {
		return fmt.Errorf("difficulty_level must be between %d and %d", DifficultyMin, DifficultyMax)
	}
	return nil
}

// FlashcardPage, sayfalı listeleme yanıtı.
//
// Pagination sözleşmesi: sayfa 1-indexed, sayfa boyutu sabit 10,
// Pages = ceil(Count/10). Aralık dışı sayfa hata değildir —
// aynı toplamlarla boş Results döner.
type FlashcardPage struct {
	Count       int         `json:"count"`
	Pages       int         `json:"pages"`
	CurrentPage int         `json:"currentPage"`
	Results     []Flashcard `json:"results"`
}
