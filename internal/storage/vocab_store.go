package storage

import (
	"database/sql"
	"strings"
	"time"

	"github.com/prody/prody/internal/core"
)

// VocabStore handles vocabulary word persistence.
type VocabStore struct {
	db *DB
}

// NewVocabStore creates a new vocab store
func NewVocabStore(db *DB) *VocabStore {
	return &VocabStore{db: db}
}

// Create persists a new vocabulary word
func (s *VocabStore) Create(word *core.VocabWord) error {
	now := time.Now().UTC()
	word.CreatedAt = now
	word.UpdatedAt = now

	_, err := s.db.conn.Exec(`
		INSERT INTO vocab_words (
		    id, word, meaning, type, mnemonic, usage_notes, enhanced_at,
		    learned, learned_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		word.ID, word.Word, word.Meaning, word.Type,
		word.Mnemonic, word.UsageNotes, word.EnhancedAt,
		word.Learned, word.LearnedAt, word.CreatedAt, word.UpdatedAt,
	)

	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint") {
		return core.ErrInvalidInput
	}
	return err
}

// GetByID returns a word by ID
func (s *VocabStore) GetByID(id core.WordID) (*core.VocabWord, error) {
	row := s.db.conn.QueryRow(`
		SELECT id, word, meaning, type, mnemonic, usage_notes, enhanced_at,
		       learned, learned_at, created_at, updated_at
		FROM vocab_words WHERE id = ?
	`, id)

	word, err := scanWord(row)
	if err == sql.ErrNoRows {
		return nil, core.ErrWordNotFound
	}
	return word, err
}

// List returns words newest first
func (s *VocabStore) List(limit int) ([]*core.VocabWord, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.conn.Query(`
		SELECT id, word, meaning, type, mnemonic, usage_notes, enhanced_at,
		       learned, learned_at, created_at, updated_at
		FROM vocab_words
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var words []*core.VocabWord
	for rows.Next() {
		word, err := scanWord(rows)
		if err != nil {
			return nil, err
		}
		words = append(words, word)
	}
	return words, rows.Err()
}

// SetEnhancement stores the AI mnemonic and usage notes on a word
func (s *VocabStore) SetEnhancement(id core.WordID, mnemonic, usageNotes string) error {
	now := time.Now().UTC()
	result, err := s.db.conn.Exec(`
		UPDATE vocab_words
		SET mnemonic = ?, usage_notes = ?, enhanced_at = ?, updated_at = ?
		WHERE id = ?
	`, mnemonic, usageNotes, now, now, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return core.ErrWordNotFound
	}
	return nil
}

// MarkLearned flips learned=false -> true. Returns true when this call
// performed the transition.
func (s *VocabStore) MarkLearned(id core.WordID) (bool, error) {
	now := time.Now().UTC()
	result, err := s.db.conn.Exec(`
		UPDATE vocab_words SET learned = TRUE, learned_at = ?, updated_at = ?
		WHERE id = ? AND learned = FALSE
	`, now, now, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	return affected == 1, err
}

// CountLearned returns the number of learned words
func (s *VocabStore) CountLearned() (int, error) {
	var count int
	err := s.db.conn.QueryRow("SELECT COUNT(*) FROM vocab_words WHERE learned = TRUE").Scan(&count)
	return count, err
}

// Count returns total word count
func (s *VocabStore) Count() (int, error) {
	var count int
	err := s.db.conn.QueryRow("SELECT COUNT(*) FROM vocab_words").Scan(&count)
	return count, err
}

func scanWord(row rowScanner) (*core.VocabWord, error) {
	word := &core.VocabWord{}
	var mnemonic, usageNotes sql.NullString
	var enhancedAt, learnedAt sql.NullTime

	err := row.Scan(
		&word.ID, &word.Word, &word.Meaning, &word.Type,
		&mnemonic, &usageNotes, &enhancedAt,
		&word.Learned, &learnedAt, &word.CreatedAt, &word.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	word.Mnemonic = mnemonic.String
	word.UsageNotes = usageNotes.String
	if enhancedAt.Valid {
		t := enhancedAt.Time
		word.EnhancedAt = &t
	}
	if learnedAt.Valid {
		t := learnedAt.Time
		word.LearnedAt = &t
	}

	return word, nil
}
