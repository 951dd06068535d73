// Package genai, metinden fiş kartı üreten dış servise (Gemini) erişim
// katmanıdır.
//
// Generator interface'i ile üretim detayları soyutlanır (Dependency
// Inversion). Şu anki implementasyon Gemini REST API kullanır; farklı bir
// model sağlayıcısına geçmek için yeni bir implementasyon yazıp main.go'da
// değiştirmek yeterli. Service katmanı interface'e bağımlıdır.
//
// Sözleşme: serbest metin + istenen kart sayısı girer; tek bir topic adı ve
// TAM OLARAK o sayıda soru-cevap çifti çıkar. Eksik, fazla veya bozuk çıktı
// BÜTÜN olarak başarısızlıktır — çağıran taraf kısmi sonucu asla görmez.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/akinalp/mnemo/pkg"
)

// Card, üretilen tek bir soru-cevap çifti.
type Card struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Deck, tek bir üretim çağrısının sonucu: bir topic + kartlar.
type Deck struct {
	Topic string
	Cards []Card
}

// Generator, kart üretimi için interface.
type Generator interface {
	// Generate, verilen metinden count adet kart üretir.
	// Dönen Deck her zaman tam count kart içerir; aksi her durum error'dır.
	Generate(ctx context.Context, text string, count int) (*Deck, error)
}

// geminiGenerator, Gemini generateContent API'sini kullanan implementasyon.
type geminiGenerator struct {
	client  *http.Client
	apiKey  string
	model   string
	baseURL string
}

// NewGeminiGenerator, Gemini REST API client'ı oluşturur.
//
// baseURL normalde https://generativelanguage.googleapis.com —
// test'lerde httptest.Server adresi geçilir.
func NewGeminiGenerator(apiKey, model, baseURL string, timeout time.Duration) Generator {
	return &geminiGenerator{
		client:  &http.Client{Timeout: timeout},
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// Gemini generateContent isteği/yanıtı — sadece kullandığımız alanlar.
type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	ResponseMimeType string `json:"responseMimeType"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// deckPayload, modelden istediğimiz JSON şekli.
type deckPayload struct {
	Topic      string `json:"topic"`
	Flashcards []Card `json:"flashcards"`
}

// Generate, Gemini'yi çağırır ve çıktıyı sıkı şekilde doğrular.
//
// Hata politikası: network hatası, 2xx dışı status, bozuk JSON, boş topic,
// yanlış kart sayısı, boş soru/cevap — hepsi pkg.ErrGateway olarak sarılır.
// Retry YAPILMAZ; tek başarısızlık üretim hatası olarak yüzeye çıkar.
// API key hiçbir error mesajına veya log'a yazılmaz (URL query'de taşınır,
// bu yüzden error'larda URL'i asla echo etmeyiz).
func (g *geminiGenerator) Generate(ctx context.Context, text string, count int) (*Deck, error) {
	prompt := buildPrompt(text, count)

	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenConfig{
			ResponseMimeType: "application/json",
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode request", pkg.ErrGateway)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build request", pkg.ErrGateway)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: generation service unreachable", pkg.ErrGateway)
	}
	defer resp.Body.Close()

	// Body boyutunu sınırla — 50k karakterlik girişten 30 kart, 1MB'ı asla aşmaz
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response", pkg.ErrGateway)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: generation service returned status %d", pkg.ErrGateway, resp.StatusCode)
	}

	var gemResp geminiResponse
	if err := json.Unmarshal(body, &gemResp); err != nil {
		return nil, fmt.Errorf("%w: malformed response envelope", pkg.ErrGateway)
	}

	if len(gemResp.Candidates) == 0 || len(gemResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: empty response", pkg.ErrGateway)
	}

	return parseDeck(gemResp.Candidates[0].Content.Parts[0].Text, count)
}

// buildPrompt, modele gönderilecek talimatı oluşturur.
// responseMimeType=application/json ile birlikte model saf JSON döner.
func buildPrompt(text string, count int) string {
	return fmt.Sprintf(`Analyze the text and create exactly %d flashcards (question-answer pairs).
Give the whole set one specific topic name.
Return the result ONLY as JSON in this shape:
{
  "topic": "Topic Name",
  "flashcards": [ {"question": "...", "answer": "..."} ]
}
Text: %s`, count, text)
}

// parseDeck, model çıktısını parse eder ve sözleşmeyi doğrular:
// boş olmayan topic + tam count adet, alanları dolu kart.
func parseDeck(raw string, count int) (*Deck, error) {
	var payload deckPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("%w: malformed deck JSON", pkg.ErrGateway)
	}

	payload.Topic = strings.TrimSpace(payload.Topic)
	if payload.Topic == "" {
		return nil, fmt.Errorf("%w: missing topic", pkg.ErrGateway)
	}

	if len(payload.Flashcards) != count {
		return nil, fmt.Errorf("%w: expected %d cards, got %d", pkg.ErrGateway, count, len(payload.Flashcards))
	}

	for i := range payload.Flashcards {
		payload.Flashcards[i].Question = strings.TrimSpace(payload.Flashcards[i].Question)
		payload.Flashcards[i].Answer = strings.TrimSpace(payload.Flashcards[i].Answer)
		if payload.Flashcards[i].Question == "" || payload.Flashcards[i].Answer == "" {
			return nil, fmt.Errorf("%w: card %d has empty fields", pkg.ErrGateway, i+1)
		}
	}

	return &Deck{Topic: payload.Topic, Cards: payload.Flashcards}, nil
}
