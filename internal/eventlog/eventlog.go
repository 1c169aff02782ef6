// Package eventlog persists observed blob events in a local SQLite database
// so event history survives across walrusctl invocations.
package eventlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	_ "modernc.org/sqlite"

	"github.com/walrus-tools/walrusctl/internal/sui"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
    tx_digest    TEXT NOT NULL,
    event_seq    TEXT NOT NULL,
    event_type   TEXT NOT NULL,
    blob_id      TEXT NOT NULL,
    size         INTEGER NOT NULL DEFAULT 0,
    timestamp_ms INTEGER NOT NULL,
    PRIMARY KEY (tx_digest, event_seq)
);

CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events(timestamp_ms);
CREATE INDEX IF NOT EXISTS idx_events_blob ON events(blob_id);
`

// Log is a SQLite-backed event archive.
type Log struct {
	db     *sql.DB
	closed atomic.Bool
}

// Open creates or opens the archive at path.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=wal&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open event archive: %w", err)
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize event archive schema: %w", err)
	}
	return &Log{db: db}, nil
}

// Put records an event. Inserts are idempotent on (tx_digest, event_seq), so
// re-observing the same window is harmless.
func (l *Log) Put(ctx context.Context, ev sui.BlobEvent) error {
	if l.closed.Load() {
		return fmt.Errorf("event archive is closed")
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO events (tx_digest, event_seq, event_type, blob_id, size, timestamp_ms)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ev.TxDigest, ev.EventSeq, ev.Type, ev.BlobID, ev.Size, ev.TimestampMs)
	if err != nil {
		return fmt.Errorf("archive event: %w", err)
	}
	return nil
}

// PutBatch records a slice of events in one transaction.
func (l *Log) PutBatch(ctx context.Context, events []sui.BlobEvent) error {
	if l.closed.Load() {
		return fmt.Errorf("event archive is closed")
	}
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("archive batch: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO events (tx_digest, event_seq, event_type, blob_id, size, timestamp_ms)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("archive batch: prepare: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		if _, err := stmt.ExecContext(ctx, ev.TxDigest, ev.EventSeq, ev.Type, ev.BlobID, ev.Size, ev.TimestampMs); err != nil {
			return fmt.Errorf("archive batch: %w", err)
		}
	}
	return tx.Commit()
}

// Recent returns the newest n events, newest first.
func (l *Log) Recent(ctx context.Context, n int) ([]sui.BlobEvent, error) {
	if l.closed.Load() {
		return nil, fmt.Errorf("event archive is closed")
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT tx_digest, event_seq, event_type, blob_id, size, timestamp_ms
		FROM events
		ORDER BY timestamp_ms DESC, tx_digest DESC, event_seq DESC
		LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	defer rows.Close()

	var out []sui.BlobEvent
	for rows.Next() {
		var ev sui.BlobEvent
		if err := rows.Scan(&ev.TxDigest, &ev.EventSeq, &ev.Type, &ev.BlobID, &ev.Size, &ev.TimestampMs); err != nil {
			return nil, fmt.Errorf("scan archive row: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Count returns the number of archived events.
func (l *Log) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count archive: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (l *Log) Close() error {
	if l.closed.Swap(true) {
		return nil
	}
	return l.db.Close()
}
