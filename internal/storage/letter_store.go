// Package storage provides persistence for Prody.
package storage

import (
	"database/sql"
	"time"

	"github.com/prody/prody/internal/core"
)

// LetterStore handles future-self letter persistence.
//
// Lifecycle flags are flipped with conditional UPDATEs scoped to one letter
// row, so concurrent delivery sweeps and views resolve to exactly one
// transition without any locking above the database.
type LetterStore struct {
	db *DB
}

// NewLetterStore creates a new letter store
func NewLetterStore(db *DB) *LetterStore {
	return &LetterStore{db: db}
}

// Create persists a new pending letter
func (s *LetterStore) Create(letter *core.FutureSelfLetter) error {
	now := time.Now().UTC()
	letter.CreatedAt = now
	letter.UpdatedAt = now

	_, err := s.db.conn.Exec(`
		INSERT INTO letters (
		    id, content, subject, mood, created_at, delivery_at,
		    delivered, opened, analysis, encouragement, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		letter.ID, letter.Content, letter.Subject, letter.Mood,
		letter.CreatedAt, letter.DeliveryAt,
		letter.Delivered, letter.Opened, letter.Analysis, letter.Encouragement,
		letter.UpdatedAt,
	)

	return err
}

// GetByID returns a letter by ID
func (s *LetterStore) GetByID(id core.LetterID) (*core.FutureSelfLetter, error) {
	row := s.db.conn.QueryRow(`
		SELECT id, content, subject, mood, created_at, delivery_at,
		       delivered, opened, analysis, encouragement, updated_at
		FROM letters WHERE id = ?
	`, id)

	letter, err := scanLetter(row)
	if err == sql.ErrNoRows {
		return nil, core.ErrLetterNotFound
	}
	return letter, err
}

// ListDue returns pending letters whose delivery time has passed
func (s *LetterStore) ListDue(now time.Time) ([]*core.FutureSelfLetter, error) {
	rows, err := s.db.conn.Query(`
		SELECT id, content, subject, mood, created_at, delivery_at,
		       delivered, opened, analysis, encouragement, updated_at
		FROM letters
		WHERE delivered = FALSE AND delivery_at <= ?
		ORDER BY delivery_at ASC
	`, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLetters(rows)
}

// ListByState returns letters filtered by their delivery state
func (s *LetterStore) ListByState(delivered bool, limit int) ([]*core.FutureSelfLetter, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.conn.Query(`
		SELECT id, content, subject, mood, created_at, delivery_at,
		       delivered, opened, analysis, encouragement, updated_at
		FROM letters
		WHERE delivered = ?
		ORDER BY delivery_at DESC
		LIMIT ?
	`, delivered, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLetters(rows)
}

// ListAll returns all letters, newest delivery first
func (s *LetterStore) ListAll(limit int) ([]*core.FutureSelfLetter, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.conn.Query(`
		SELECT id, content, subject, mood, created_at, delivery_at,
		       delivered, opened, analysis, encouragement, updated_at
		FROM letters
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLetters(rows)
}

// MarkDelivered flips delivered=false -> true for one letter. Returns true
// when this call performed the transition, false when the letter was already
// delivered (or does not exist). Idempotent by construction.
func (s *LetterStore) MarkDelivered(id core.LetterID) (bool, error) {
	result, err := s.db.conn.Exec(`
		UPDATE letters SET delivered = TRUE, updated_at = ?
		WHERE id = ? AND delivered = FALSE
	`, time.Now().UTC(), id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	return affected == 1, err
}

// MarkOpened flips opened=false -> true, but only for a letter that has
// already been delivered. Returns true when this call performed the
// transition. A letter can therefore never be observed with opened=true and
// delivered=false.
func (s *LetterStore) MarkOpened(id core.LetterID) (bool, error) {
	result, err := s.db.conn.Exec(`
		UPDATE letters SET opened = TRUE, updated_at = ?
		WHERE id = ? AND delivered = TRUE AND opened = FALSE
	`, time.Now().UTC(), id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	return affected == 1, err
}

// SetReflection stores the AI analysis on an opened letter. The fields are
// written at most once: a second call is a no-op.
func (s *LetterStore) SetReflection(id core.LetterID, analysis, encouragement string) error {
	_, err := s.db.conn.Exec(`
		UPDATE letters SET analysis = ?, encouragement = ?, updated_at = ?
		WHERE id = ? AND opened = TRUE AND (analysis IS NULL OR analysis = '')
	`, analysis, encouragement, time.Now().UTC(), id)
	return err
}

// Count returns total letter count
func (s *LetterStore) Count() (int, error) {
	var count int
	err := s.db.conn.QueryRow("SELECT COUNT(*) FROM letters").Scan(&count)
	return count, err
}

// rowScanner lets scanLetter work with both QueryRow and Query results
type rowScanner interface {
	Scan(dest ...any) error
}

func scanLetter(row rowScanner) (*core.FutureSelfLetter, error) {
	letter := &core.FutureSelfLetter{}
	var subject, analysis, encouragement sql.NullString

	err := row.Scan(
		&letter.ID, &letter.Content, &subject, &letter.Mood,
		&letter.CreatedAt, &letter.DeliveryAt,
		&letter.Delivered, &letter.Opened, &analysis, &encouragement,
		&letter.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	letter.Subject = subject.String
	letter.Analysis = analysis.String
	letter.Encouragement = encouragement.String

	return letter, nil
}

func scanLetters(rows *sql.Rows) ([]*core.FutureSelfLetter, error) {
	var letters []*core.FutureSelfLetter
	for rows.Next() {
		letter, err := scanLetter(rows)
		if err != nil {
			return nil, err
		}
		letters = append(letters, letter)
	}
	return letters, rows.Err()
}
