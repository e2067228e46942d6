package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore keeps documents in SQLite. With the default in-memory DSN the
// data lives exactly as long as the process, like MemoryStore.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every new connection to ":memory:" is a separate, empty database.
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS documents (
        filename TEXT PRIMARY KEY,
        kind TEXT NOT NULL CHECK (kind IN ('text', 'image')),
        content TEXT NOT NULL,
        mime_type TEXT NOT NULL DEFAULT '',
        updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Put(ctx context.Context, doc Document) error {
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
        INSERT INTO documents (filename, kind, content, mime_type, updated_at)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(filename) DO UPDATE SET
            kind = excluded.kind,
            content = excluded.content,
            mime_type = excluded.mime_type,
            updated_at = excluded.updated_at
    `, doc.Filename, string(doc.Kind), doc.Content, doc.MIMEType, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert document %q: %w", doc.Filename, err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, filename string) (Document, bool, error) {
	var (
		doc  Document
		kind string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT filename, kind, content, mime_type, updated_at FROM documents WHERE filename = ?", filename,
	).Scan(&doc.Filename, &kind, &doc.Content, &doc.MIMEType, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, false, nil
		}
		return Document{}, false, fmt.Errorf("failed to query document %q: %w", filename, err)
	}
	doc.Kind = Kind(kind)
	return doc, true, nil
}
