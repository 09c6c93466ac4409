package storage

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/prooflens/prooflens/internal/core"
)

// VerificationStore handles verification record persistence
type VerificationStore struct {
	db *DB
}

// NewVerificationStore creates a new verification store
func NewVerificationStore(db *DB) *VerificationStore {
	return &VerificationStore{db: db}
}

// Create inserts a new verification record
func (s *VerificationStore) Create(v *core.Verification) error {
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}

	matched, _ := json.Marshal(v.MatchedElements)
	var features []byte
	if v.Features != nil {
		features, _ = json.Marshal(v.Features)
	}

	_, err := s.db.conn.Exec(`
		INSERT INTO verifications (
		    id, status, task_title, task_notes, task_category, task_priority,
		    completed, confidence, feedback, matched_elements,
		    features, image_hash, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		v.ID, v.Status, v.Task.Title, v.Task.Notes, v.Task.Category, v.Task.Priority,
		v.Completed, v.Confidence, v.Feedback, string(matched),
		nullableString(features), v.ImageHash, v.CreatedAt,
	)

	return err
}

// GetByID returns a verification by ID
func (s *VerificationStore) GetByID(id string) (*core.Verification, error) {
	row := s.db.conn.QueryRow(`
		SELECT id, status, task_title, task_notes, task_category, task_priority,
		       completed, confidence, feedback, matched_elements,
		       features, image_hash, created_at
		FROM verifications WHERE id = ?
	`, id)

	return scanVerification(row)
}

// List returns verifications ordered newest first, up to limit.
func (s *VerificationStore) List(limit int) ([]*core.Verification, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.conn.Query(`
		SELECT id, status, task_title, task_notes, task_category, task_priority,
		       completed, confidence, feedback, matched_elements,
		       features, image_hash, created_at
		FROM verifications
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var verifications []*core.Verification
	for rows.Next() {
		v, err := scanVerification(rows)
		if err != nil {
			return nil, err
		}
		verifications = append(verifications, v)
	}

	return verifications, rows.Err()
}

// ListByCategory returns verifications for one task category, newest first.
func (s *VerificationStore) ListByCategory(category core.TaskCategory, limit int) ([]*core.Verification, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.conn.Query(`
		SELECT id, status, task_title, task_notes, task_category, task_priority,
		       completed, confidence, feedback, matched_elements,
		       features, image_hash, created_at
		FROM verifications
		WHERE task_category = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, category, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var verifications []*core.Verification
	for rows.Next() {
		v, err := scanVerification(rows)
		if err != nil {
			return nil, err
		}
		verifications = append(verifications, v)
	}

	return verifications, rows.Err()
}

// Stats summarizes stored verification outcomes.
type Stats struct {
	Total         int     `json:"total"`
	Verified      int     `json:"verified"`
	NotVerified   int     `json:"not_verified"`
	ImageFailed   int     `json:"image_failed"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// GetStats aggregates counts and the mean confidence across all records.
func (s *VerificationStore) GetStats() (*Stats, error) {
	stats := &Stats{}
	var avg sql.NullFloat64

	err := s.db.conn.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
		       AVG(confidence)
		FROM verifications
	`, core.StatusVerified, core.StatusNotVerified, core.StatusImageFailed).Scan(
		&stats.Total, &stats.Verified, &stats.NotVerified, &stats.ImageFailed, &avg,
	)
	if err != nil {
		return nil, err
	}

	if avg.Valid {
		stats.AvgConfidence = avg.Float64
	}
	return stats, nil
}

// Delete removes a verification record
func (s *VerificationStore) Delete(id string) error {
	result, err := s.db.conn.Exec("DELETE FROM verifications WHERE id = ?", id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return core.ErrVerificationNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVerification(row rowScanner) (*core.Verification, error) {
	v := &core.Verification{}
	var matched string
	var features sql.NullString

	err := row.Scan(
		&v.ID, &v.Status, &v.Task.Title, &v.Task.Notes, &v.Task.Category, &v.Task.Priority,
		&v.Completed, &v.Confidence, &v.Feedback, &matched,
		&features, &v.ImageHash, &v.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, core.ErrVerificationNotFound
	}
	if err != nil {
		return nil, err
	}

	json.Unmarshal([]byte(matched), &v.MatchedElements)
	if features.Valid && features.String != "" {
		v.Features = &core.ImageFeatures{}
		json.Unmarshal([]byte(features.String), v.Features)
	}

	return v, nil
}

func nullableString(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
