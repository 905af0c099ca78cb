package storage

import (
	"time"

	"github.com/prody/prody/internal/core"
)

// RewardStore handles the append-only XP grant ledger. Grants are never
// updated or deleted once written.
type RewardStore struct {
	db *DB
}

// NewRewardStore creates a new reward store
func NewRewardStore(db *DB) *RewardStore {
	return &RewardStore{db: db}
}

// Append writes one grant to the ledger
func (s *RewardStore) Append(grant *core.RewardGrant) error {
	if grant.GrantedAt.IsZero() {
		grant.GrantedAt = time.Now().UTC()
	}

	_, err := s.db.conn.Exec(`
		INSERT INTO rewards (id, amount, source, description, granted_at)
		VALUES (?, ?, ?, ?, ?)
	`, grant.ID, grant.Amount, grant.Source, grant.Description, grant.GrantedAt)

	return err
}

// TotalXP returns the sum of all grant amounts
func (s *RewardStore) TotalXP() (int, error) {
	var total int
	err := s.db.conn.QueryRow("SELECT COALESCE(SUM(amount), 0) FROM rewards").Scan(&total)
	return total, err
}

// TotalBySource returns XP totals grouped by grant source
func (s *RewardStore) TotalBySource() (map[core.RewardSource]int, error) {
	rows, err := s.db.conn.Query(`
		SELECT source, SUM(amount) FROM rewards GROUP BY source
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[core.RewardSource]int)
	for rows.Next() {
		var source core.RewardSource
		var total int
		if err := rows.Scan(&source, &total); err != nil {
			return nil, err
		}
		totals[source] = total
	}
	return totals, rows.Err()
}

// CountBySource returns the number of grants for one source
func (s *RewardStore) CountBySource(source core.RewardSource) (int, error) {
	var count int
	err := s.db.conn.QueryRow(
		"SELECT COUNT(*) FROM rewards WHERE source = ?", source,
	).Scan(&count)
	return count, err
}

// Recent returns the newest grants first
func (s *RewardStore) Recent(limit int) ([]*core.RewardGrant, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.conn.Query(`
		SELECT id, amount, source, description, granted_at
		FROM rewards
		ORDER BY granted_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []*core.RewardGrant
	for rows.Next() {
		grant := &core.RewardGrant{}
		err := rows.Scan(
			&grant.ID, &grant.Amount, &grant.Source,
			&grant.Description, &grant.GrantedAt,
		)
		if err != nil {
			return nil, err
		}
		grants = append(grants, grant)
	}
	return grants, rows.Err()
}
