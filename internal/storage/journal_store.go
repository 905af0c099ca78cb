package storage

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/prody/prody/internal/core"
)

// JournalStore handles journal entry persistence.
type JournalStore struct {
	db *DB
}

// NewJournalStore creates a new journal store
func NewJournalStore(db *DB) *JournalStore {
	return &JournalStore{db: db}
}

// Create persists a new journal entry
func (s *JournalStore) Create(entry *core.JournalEntry) error {
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	themes, err := marshalThemes(entry.Themes)
	if err != nil {
		return err
	}

	_, err = s.db.conn.Exec(`
		INSERT INTO journal_entries (
		    id, content, mood, summary, reflection, suggestion, sentiment,
		    themes, analyzed_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		entry.ID, entry.Content, entry.Mood,
		entry.Summary, entry.Reflection, entry.Suggestion, entry.Sentiment,
		themes, entry.AnalyzedAt, entry.CreatedAt, entry.UpdatedAt,
	)

	return err
}

// GetByID returns an entry by ID
func (s *JournalStore) GetByID(id core.EntryID) (*core.JournalEntry, error) {
	row := s.db.conn.QueryRow(`
		SELECT id, content, mood, summary, reflection, suggestion, sentiment,
		       themes, analyzed_at, created_at, updated_at
		FROM journal_entries WHERE id = ?
	`, id)

	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, core.ErrEntryNotFound
	}
	return entry, err
}

// List returns entries newest first
func (s *JournalStore) List(limit int) ([]*core.JournalEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.conn.Query(`
		SELECT id, content, mood, summary, reflection, suggestion, sentiment,
		       themes, analyzed_at, created_at, updated_at
		FROM journal_entries
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*core.JournalEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// SetAnalysis stores the AI analysis on an entry
func (s *JournalStore) SetAnalysis(id core.EntryID, analysis *core.JournalEntry) error {
	themes, err := marshalThemes(analysis.Themes)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	result, err := s.db.conn.Exec(`
		UPDATE journal_entries
		SET summary = ?, reflection = ?, suggestion = ?, sentiment = ?,
		    themes = ?, analyzed_at = ?, updated_at = ?
		WHERE id = ?
	`,
		analysis.Summary, analysis.Reflection, analysis.Suggestion,
		analysis.Sentiment, themes, now, now, id,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return core.ErrEntryNotFound
	}
	return nil
}

// Count returns total entry count
func (s *JournalStore) Count() (int, error) {
	var count int
	err := s.db.conn.QueryRow("SELECT COUNT(*) FROM journal_entries").Scan(&count)
	return count, err
}

// EntryDays returns the distinct UTC days (YYYY-MM-DD) that have at least one
// entry, newest first. Used for streak calculation. Days are derived here
// rather than with SQL date functions, which cannot parse the driver's time
// encoding.
func (s *JournalStore) EntryDays(limit int) ([]string, error) {
	if limit <= 0 {
		limit = 365
	}

	rows, err := s.db.conn.Query(`
		SELECT created_at FROM journal_entries ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []string
	seen := make(map[string]bool)
	for rows.Next() {
		var createdAt time.Time
		if err := rows.Scan(&createdAt); err != nil {
			return nil, err
		}
		day := createdAt.UTC().Format("2006-01-02")
		if seen[day] {
			continue
		}
		seen[day] = true
		days = append(days, day)
		if len(days) >= limit {
			break
		}
	}
	return days, rows.Err()
}

func scanEntry(row rowScanner) (*core.JournalEntry, error) {
	entry := &core.JournalEntry{}
	var mood, summary, reflection, suggestion, sentiment, themes sql.NullString
	var analyzedAt sql.NullTime

	err := row.Scan(
		&entry.ID, &entry.Content, &mood,
		&summary, &reflection, &suggestion, &sentiment,
		&themes, &analyzedAt, &entry.CreatedAt, &entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.Mood = core.Mood(mood.String)
	entry.Summary = summary.String
	entry.Reflection = reflection.String
	entry.Suggestion = suggestion.String
	entry.Sentiment = sentiment.String
	if analyzedAt.Valid {
		t := analyzedAt.Time
		entry.AnalyzedAt = &t
	}

	if themes.Valid && themes.String != "" {
		if err := json.Unmarshal([]byte(themes.String), &entry.Themes); err != nil {
			return nil, err
		}
	}

	return entry, nil
}

func marshalThemes(themes []string) (string, error) {
	if len(themes) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(themes)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
