package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/akinalp/mnemo/models"
	"github.com/akinalp/mnemo/pkg"
	"github.com/akinalp/mnemo/services"
)

// FlashcardHandler, fiş kartı endpoint'lerini yöneten struct.
// Tüm endpoint'ler auth middleware arkasındadır — context'te her zaman
// çözümlenmiş kullanıcı vardır.
type FlashcardHandler struct {
	cardService services.FlashcardService
}

// NewFlashcardHandler, constructor.
func NewFlashcardHandler(cardService services.FlashcardService) *FlashcardHandler {
	return &FlashcardHandler{cardService: cardService}
}

// currentUser, context'ten auth middleware'in koyduğu kullanıcıyı çıkarır.
// Middleware atlanmışsa (yanlış route kablolaması) nil döner — handler
// 401 ile keser, koleksiyona kimliksiz erişim mümkün değildir.
func currentUser(r *http.Request) *models.User {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// Create godoc
// POST /api/flashcards
// Body: { "question": "...", "answer": "...", "topic": "..." }
func (h *FlashcardHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.CreateFlashcardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	card, err := h.cardService.Create(r.Context(), user.ID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, card)
}

// Generate godoc
// POST /api/flashcards/generate
// Body: { "text": "...", "count": 10 }
//
// Metinden kart seti üretir; batch atomik olarak kaydedilir.
// Üretim servisi hatası 502 döner ve DB'ye hiçbir şey yazılmaz.
func (h *FlashcardHandler) Generate(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cards, err := h.cardService.Generate(r.Context(), user.ID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, cards)
}

// List godoc
// GET /api/flashcards?page=N
//
// page query parametresi opsiyoneldir (varsayılan 1). Sayısal olmayan
// değer 400; aralık dışı sayfa boş results ile 200 döner.
func (h *FlashcardHandler) List(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			pkg.ErrorWithMessage(w, http.StatusBadRequest, "page must be a number")
			return
		}
		page = parsed
	}

	result, err := h.cardService.List(r.Context(), user.ID, page)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, result)
}

// Topics godoc
// GET /api/flashcards/topics
func (h *FlashcardHandler) Topics(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	topics, err := h.cardService.Topics(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, topics)
}

// ByTopic godoc
// GET /api/flashcards/topic/{topic}
func (h *FlashcardHandler) ByTopic(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	// r.PathValue — Go 1.22 ServeMux path parametresi, URL-decoded gelir
	topic := r.PathValue("topic")

	cards, err := h.cardService.ByTopic(r.Context(), user.ID, topic)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, cards)
}

// Update godoc
// PATCH /api/flashcards/{id}
// Body: sadece değişecek alanlar — gönderilmeyen alanlara dokunulmaz.
func (h *FlashcardHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.UpdateFlashcardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	card, err := h.cardService.Update(r.Context(), user.ID, r.PathValue("id"), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, card)
}

// Review godoc
// POST /api/flashcards/{id}/review
// Body: { "difficulty_level": 3 }
func (h *FlashcardHandler) Review(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	card, err := h.cardService.Review(r.Context(), user.ID, r.PathValue("id"), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, card)
}

// Delete godoc
// DELETE /api/flashcards/{id}
func (h *FlashcardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	if err := h.cardService.Delete(r.Context(), user.ID, r.PathValue("id")); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "flashcard deleted"})
}

// DeleteTopic godoc
// DELETE /api/flashcards/topic/{topic}
// Topic'in tüm kartlarını siler — sıfır eşleşme de başarıdır.
func (h *FlashcardHandler) DeleteTopic(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	if err := h.cardService.DeleteTopic(r.Context(), user.ID, r.PathValue("topic")); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "topic deleted"})
}
