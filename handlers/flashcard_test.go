package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/akinalp/mnemo/models"
	"github.com/akinalp/mnemo/pkg"
	"github.com/akinalp/mnemo/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCardService — handler testleri service katmanını mock'lar;
// iş kuralları service testlerinde doğrulanır, burada sadece HTTP davranışı.
type fakeCardService struct {
	listFn     func(ctx context.Context, ownerID string, page int) (*models.FlashcardPage, error)
	generateFn func(ctx context.Context, ownerID string, req *models.GenerateRequest) ([]models.Flashcard, error)
}

var _ services.FlashcardService = (*fakeCardService)(nil)

func (f *fakeCardService) Create(_ context.Context, _ string, _ *models.CreateFlashcardRequest) (*models.Flashcard, error) {
	return nil, pkg.ErrInternal
}

func (f *fakeCardService) Generate(ctx context.Context, ownerID string, req *models.GenerateRequest) ([]models.Flashcard, error) {
	if f.generateFn != nil {
		return f.generateFn(ctx, ownerID, req)
	}
	return nil, pkg.ErrInternal
}

func (f *fakeCardService) List(ctx context.Context, ownerID string, page int) (*models.FlashcardPage, error) {
	if f.listFn != nil {
		return f.listFn(ctx, ownerID, page)
	}
	return nil, pkg.ErrInternal
}

func (f *fakeCardService) Topics(_ context.Context, _ string) ([]string, error) {
	return []string{}, nil
}

func (f *fakeCardService) ByTopic(_ context.Context, _, _ string) ([]models.Flashcard, error) {
	return []models.Flashcard{}, nil
}

func (f *fakeCardService) Update(_ context.Context, _, _ string, _ *models.UpdateFlashcardRequest) (*models.Flashcard, error) {
	return nil, pkg.ErrNotFound
}

func (f *fakeCardService) Review(_ context.Context, _, _ string, _ *models.ReviewRequest) (*models.Flashcard, error) {
	return nil, pkg.ErrNotFound
}

func (f *fakeCardService) Delete(_ context.Context, _, _ string) error {
	return pkg.ErrNotFound
}

func (f *fakeCardService) DeleteTopic(_ context.Context, _, _ string) error {
	return nil
}

// authedRequest, middleware'in yapacağı gibi context'e kullanıcı koyar.
func authedRequest(method, target string, body string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	user := &models.User{ID: "user-1", Username: "tester"}
	return req.WithContext(context.WithValue(req.Context(), UserContextKey, user))
}

func TestListDefaultsToPageOne(t *testing.T) {
	t.Parallel()

	var gotPage int
	svc := &fakeCardService{
		listFn: func(_ context.Context, ownerID string, page int) (*models.FlashcardPage, error) {
			assert.Equal(t, "user-1", ownerID)
			gotPage = page
			return &models.FlashcardPage{Count: 0, Pages: 0, CurrentPage: page, Results: []models.Flashcard{}}, nil
		},
	}
	h := NewFlashcardHandler(svc)

	rec := httptest.NewRecorder()
	h.List(rec, authedRequest(http.MethodGet, "/api/flashcards", ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, gotPage)

	// Sözleşme anahtarları envelope data'sında aynen taşınır
	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Count       int               `json:"count"`
			Pages       int               `json:"pages"`
			CurrentPage int               `json:"currentPage"`
			Results     []json.RawMessage `json:"results"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Data.Results, "results must render as [], not null")
}

func TestListParsesPageParam(t *testing.T) {
	t.Parallel()

	var gotPage int
	svc := &fakeCardService{
		listFn: func(_ context.Context, _ string, page int) (*models.FlashcardPage, error) {
			gotPage = page
			return &models.FlashcardPage{CurrentPage: page, Results: []models.Flashcard{}}, nil
		},
	}
	h := NewFlashcardHandler(svc)

	rec := httptest.NewRecorder()
	h.List(rec, authedRequest(http.MethodGet, "/api/flashcards?page=3", ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, gotPage)
}

func TestListRejectsNonNumericPage(t *testing.T) {
	t.Parallel()

	h := NewFlashcardHandler(&fakeCardService{})

	rec := httptest.NewRecorder()
	h.List(rec, authedRequest(http.MethodGet, "/api/flashcards?page=abc", ""))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListWithoutUserInContext(t *testing.T) {
	t.Parallel()

	// Middleware atlanmışsa handler kendisi 401 ile keser
	h := NewFlashcardHandler(&fakeCardService{})

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/flashcards", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGenerateMapsGatewayErrorTo502(t *testing.T) {
	t.Parallel()

	svc := &fakeCardService{
		generateFn: func(_ context.Context, _ string, _ *models.GenerateRequest) ([]models.Flashcard, error) {
			return nil, pkg.ErrGateway
		},
	}
	h := NewFlashcardHandler(svc)

	rec := httptest.NewRecorder()
	h.Generate(rec, authedRequest(http.MethodPost, "/api/flashcards/generate",
		`{"text": "some sufficiently long source text", "count": 5}`))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGenerateRejectsMalformedBody(t *testing.T) {
	t.Parallel()

	h := NewFlashcardHandler(&fakeCardService{})

	rec := httptest.NewRecorder()
	h.Generate(rec, authedRequest(http.MethodPost, "/api/flashcards/generate", `{not json`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
