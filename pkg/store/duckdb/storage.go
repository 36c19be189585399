package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const reviewReportsSchema = `
	CREATE TABLE IF NOT EXISTS review_reports (
		id VARCHAR NOT NULL,
		service VARCHAR,
		kind VARCHAR,
		decision VARCHAR,
		score INTEGER,
		summary JSON,
		markdown VARCHAR,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id)
	);
`

var bootQueries = []string{
	reviewReportsSchema,
}

type Settings struct {
	DbPath string
}

// NewDB opens (or creates) the DuckDB database and runs schema bootstrap.
func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create duckdb connector: %w", err)
	}

	return sql.OpenDB(c), nil
}
