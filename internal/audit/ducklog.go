// Package audit keeps an anonymous processing log in a DuckDB file.
package audit

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Polyte/OMS-OCR/internal/models"
	"github.com/marcboeker/go-duckdb"
)

const schema = `
	CREATE TABLE IF NOT EXISTS processing_log (
		id          VARCHAR PRIMARY KEY,
		received_at TIMESTAMP NOT NULL,
		mime_type   VARCHAR,
		size_bytes  BIGINT NOT NULL,
		outcome     VARCHAR NOT NULL,
		status_code INTEGER NOT NULL,
		duration_ms BIGINT NOT NULL
	)
`

// DuckLog records one row per pipeline run.
type DuckLog struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewDuckLog opens (or creates) the processing log at path.
func NewDuckLog(path string, logger *slog.Logger) (*DuckLog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating processing log directory: %w", err)
	}

	connector, err := duckdb.NewConnector(path, func(execer driver.ExecerContext) error {
		pragmas := []string{
			"PRAGMA memory_limit='256MB'",
			"PRAGMA threads=2",
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	logger.Info("processing log opened", "path", path)
	return &DuckLog{db: db, path: path, logger: logger}, nil
}

// Path returns the database file path.
func (l *DuckLog) Path() string {
	return l.path
}

// Record inserts rec.
func (l *DuckLog) Record(ctx context.Context, rec models.ProcessingRecord) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO processing_log (id, received_at, mime_type, size_bytes, outcome, status_code, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ReceivedAt.UTC(), rec.MimeType, rec.Size, string(rec.Outcome), rec.StatusCode, rec.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("inserting processing record: %w", err)
	}
	return nil
}

// Stats returns counts per outcome and the mean duration over all rows.
func (l *DuckLog) Stats(ctx context.Context) (*models.ProcessingStats, error) {
	stats := &models.ProcessingStats{ByOutcome: make(map[models.Outcome]int)}

	err := l.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(AVG(duration_ms), 0) FROM processing_log",
	).Scan(&stats.Total, &stats.AverageDurationMs)
	if err != nil {
		return nil, fmt.Errorf("querying totals: %w", err)
	}

	rows, err := l.db.QueryContext(ctx,
		"SELECT outcome, COUNT(*) FROM processing_log GROUP BY outcome",
	)
	if err != nil {
		return nil, fmt.Errorf("querying outcomes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			outcome string
			count   int
		)
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, fmt.Errorf("scanning outcome row: %w", err)
		}
		stats.ByOutcome[models.Outcome(outcome)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating outcomes: %w", err)
	}

	return stats, nil
}

// Close closes the database.
func (l *DuckLog) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}
