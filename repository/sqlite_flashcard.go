package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/akinalp/mnemo/database"
	"github.com/akinalp/mnemo/models"
	"github.com/akinalp/mnemo/pkg"
)

// sqliteFlashcardRepo, FlashcardRepository interface'inin SQLite implementasyonu.
//
// Diğer repo'lardan farklı olarak *sql.DB tutar (TxQuerier değil) çünkü
// CreateBatch kendi transaction'ını database.WithTx ile başlatır.
type sqliteFlashcardRepo struct {
	db *sql.DB
}

// NewSQLiteFlashcardRepo, constructor — interface döner.
func NewSQLiteFlashcardRepo(db *sql.DB) FlashcardRepository {
	return &sqliteFlashcardRepo{db: db}
}

const flashcardColumns = `id, question, answer, topic, last_reviewed, difficulty_level, user_id, created_at`

func (r *sqliteFlashcardRepo) Create(ctx context.Context, card *models.Flashcard) error {
	return insertFlashcard(ctx, r.db, card)
}

// CreateBatch, tüm kartları tek transaction içinde kaydeder.
//
// Üretim akışının (Gemini → N kart) tek multi-row write'ı budur:
// herhangi bir insert başarısız olursa WithTx rollback yapar ve
// DB'de SIFIR kart kalır — kısmi batch asla oluşmaz.
func (r *sqliteFlashcardRepo) CreateBatch(ctx context.Context, cards []models.Flashcard) error {
	if len(cards) == 0 {
		return nil
	}

	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		for i := range cards {
			if err := insertFlashcard(ctx, tx, &cards[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// insertFlashcard, tek satır insert — hem Create hem CreateBatch kullanır.
// Querier olarak TxQuerier alır: *sql.DB veya *sql.Tx fark etmez.
func insertFlashcard(ctx context.Context, q database.TxQuerier, card *models.Flashcard) error {
	query := `
		INSERT INTO flashcards (id, question, answer, topic, last_reviewed, difficulty_level, user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING created_at`

	difficulty := card.DifficultyLevel
	if difficulty == 0 {
		difficulty = models.DifficultyMin
	}

	err := q.QueryRowContext(ctx, query,
		card.ID,
		card.Question,
		card.Answer,
		card.Topic,
		card.LastReviewed,
		difficulty,
		card.UserID,
	).Scan(&card.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create flashcard: %w", err)
	}

	card.DifficultyLevel = difficulty
	return nil
}

func (r *sqliteFlashcardRepo) GetByID(ctx context.Context, ownerID, id string) (*models.Flashcard, error) {
	query := `SELECT ` + flashcardColumns + ` FROM flashcards WHERE id = ? AND user_id = ?`

	card := &models.Flashcard{}
	err := r.db.QueryRowContext(ctx, query, id, ownerID).Scan(
		&card.ID, &card.Question, &card.Answer, &card.Topic,
		&card.LastReviewed, &card.DifficultyLevel, &card.UserID, &card.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get flashcard by id: %w", err)
	}

	return card, nil
}

// ListPage, creation sırasına göre bir sayfa döner.
//
// Sıralama anahtarı (created_at, id): created_at saniye çözünürlüklü
// olduğu için aynı saniyede oluşan kartlarda id deterministik tiebreaker'dır.
func (r *sqliteFlashcardRepo) ListPage(ctx context.Context, ownerID string, offset, limit int) ([]models.Flashcard, error) {
	query := `
		SELECT ` + flashcardColumns + `
		FROM flashcards
		WHERE user_id = ?
		ORDER BY created_at, id
		LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list flashcards: %w", err)
	}
	defer rows.Close()

	return scanFlashcards(rows)
}

func (r *sqliteFlashcardRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM flashcards WHERE user_id = ?`, ownerID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count flashcards: %w", err)
	}
	return count, nil
}

func (r *sqliteFlashcardRepo) ListTopics(ctx context.Context, ownerID string) ([]string, error) {
	// topic <> '' migration'da CHECK ile garanti ama eski/dış veriye karşı
	// sorguda da filtrelenir — sözleşme "boş olmayan distinct değerler"
	query := `
		SELECT DISTINCT topic FROM flashcards
		WHERE user_id = ? AND topic <> ''
		ORDER BY topic`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	defer rows.Close()

	var topics []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan topic row: %w", err)
		}
		topics = append(topics, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating topic rows: %w", err)
	}

	return topics, nil
}

func (r *sqliteFlashcardRepo) ListByTopic(ctx context.Context, ownerID, topic string) ([]models.Flashcard, error) {
	// Birebir eşleşme — SQLite'ta = karşılaştırması case-sensitive'dir,
	// LIKE veya COLLATE NOCASE bilinçli olarak kullanılmıyor.
	query := `
		SELECT ` + flashcardColumns + `
		FROM flashcards
		WHERE user_id = ? AND topic = ?
		ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, ownerID, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to list flashcards by topic: %w", err)
	}
	defer rows.Close()

	return scanFlashcards(rows)
}

func (r *sqliteFlashcardRepo) Update(ctx context.Context, ownerID string, card *models.Flashcard) error {
	query := `
		UPDATE flashcards
		SET question = ?, answer = ?, topic = ?, last_reviewed = ?, difficulty_level = ?
		WHERE id = ? AND user_id = ?`

	result, err := r.db.ExecContext(ctx, query,
		card.Question, card.Answer, card.Topic, card.LastReviewed, card.DifficultyLevel,
		card.ID, ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update flashcard: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return pkg.ErrNotFound
	}

	return nil
}

func (r *sqliteFlashcardRepo) Delete(ctx context.Context, ownerID, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM flashcards WHERE id = ? AND user_id = ?`, id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete flashcard: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return pkg.ErrNotFound
	}

	return nil
}

// DeleteTopic, topic'in tüm kartlarını tek statement ile siler.
// Tek DELETE zaten atomiktir — ayrıca transaction açmaya gerek yok.
// Sıfır eşleşme başarıdır (no-op), ErrNotFound DÖNMEZ.
func (r *sqliteFlashcardRepo) DeleteTopic(ctx context.Context, ownerID, topic string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM flashcards WHERE user_id = ? AND topic = ?`, ownerID, topic,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete topic: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return affected, nil
}

// scanFlashcards, rows iterasyonunu tek yerde toplar.
func scanFlashcards(rows *sql.Rows) ([]models.Flashcard, error) {
	var cards []models.Flashcard
	for rows.Next() {
		var c models.Flashcard
		if err := rows.Scan(
			&c.ID, &c.Question, &c.Answer, &c.Topic,
			&c.LastReviewed, &c.DifficultyLevel, &c.UserID, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan flashcard row: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating flashcard rows: %w", err)
	}

	return cards, nil
}
