package review

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ops-tools/run-sentinel/pkg/models/store"
)

func TestNewStore(t *testing.T) {
	_, err := NewStore(nil)
	assert.Error(t, err)
}

func TestStore_Add(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s, err := NewStore(db)
	require.NoError(t, err)

	record := store.ReviewRecord{
		ID:       "rev-1",
		Service:  "demo",
		Kind:     "yaml",
		Decision: "NO-GO",
		Score:    22,
		Summary:  map[string]int{"HIGH": 1, "MEDIUM": 2, "LOW": 1, "INFO": 0},
		Markdown: "### Cloud Run Review (demo)",
	}

	mock.ExpectExec("INSERT INTO review_reports").
		WithArgs(record.ID, record.Service, record.Kind, record.Decision,
			record.Score, sqlmock.AnyArg(), record.Markdown).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, s.Add(context.Background(), record))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s, err := NewStore(db)
	require.NoError(t, err)

	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "service", "kind", "decision", "score", "summary", "markdown", "created_at"}).
		AddRow("rev-2", "demo", "yaml", "GO", 3, `{"HIGH":0,"MEDIUM":0,"LOW":1,"INFO":1}`, "md", createdAt).
		AddRow("rev-1", "demo", "sh", "NO-GO", 17, `{"HIGH":1,"MEDIUM":1,"LOW":1,"INFO":0}`, "md", createdAt.Add(-time.Hour))

	mock.ExpectQuery("SELECT id, service, kind, decision, score, summary, markdown, created_at").
		WithArgs(5).
		WillReturnRows(rows)

	records, err := s.List(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "rev-2", records[0].ID)
	assert.Equal(t, "GO", records[0].Decision)
	assert.Equal(t, 1, records[0].Summary["LOW"])
	assert.Equal(t, 1, records[1].Summary["HIGH"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ListDefaultLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s, err := NewStore(db)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id, service, kind, decision, score, summary, markdown, created_at").
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "service", "kind", "decision", "score", "summary", "markdown", "created_at"}))

	records, err := s.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}
