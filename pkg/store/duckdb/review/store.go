package review

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ops-tools/run-sentinel/pkg/models/store"
)

// Store persists review outcomes and reads back the recent history.
type Store interface {
	Add(ctx context.Context, record store.ReviewRecord) error
	List(ctx context.Context, limit int) ([]store.ReviewRecord, error)
}

type reviewStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &reviewStore{db: db}, nil
}

func (s *reviewStore) Add(ctx context.Context, record store.ReviewRecord) error {
	summary, err := json.Marshal(record.Summary)
	if err != nil {
		return fmt.Errorf("failed to serialize summary for review %s: %w", record.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO review_reports (id, service, kind, decision, score, summary, markdown)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.Service, record.Kind, record.Decision,
		record.Score, string(summary), record.Markdown,
	)
	if err != nil {
		return fmt.Errorf("failed to insert review %s: %w", record.ID, err)
	}
	return nil
}

func (s *reviewStore) List(ctx context.Context, limit int) ([]store.ReviewRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, service, kind, decision, score, summary, markdown, created_at
		FROM review_reports
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query review history: %w", err)
	}
	defer rows.Close()

	var records []store.ReviewRecord
	for rows.Next() {
		var rec store.ReviewRecord
		var summary string
		err := rows.Scan(&rec.ID, &rec.Service, &rec.Kind, &rec.Decision,
			&rec.Score, &summary, &rec.Markdown, &rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review record: %w", err)
		}
		if summary != "" {
			if err := json.Unmarshal([]byte(summary), &rec.Summary); err != nil {
				return nil, fmt.Errorf("failed to parse summary for review %s: %w", rec.ID, err)
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
