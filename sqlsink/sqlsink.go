// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package sqlsink implements an append-only store for jsonout records backed
// by a SQLite database.
//
// A *Store is an io.Writer: each call to Write stores one record, so a Store
// can be the target of a jsonout.Outputter whose Put method writes each
// record in a single call.
package sqlsink

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/creachadair/jsonout/record"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	seq   INTEGER PRIMARY KEY,
	id    TEXT NOT NULL UNIQUE,
	class TEXT NOT NULL,
	body  TEXT NOT NULL,
	hash  TEXT NOT NULL DEFAULT ''
)`

// A Store is an append-only table of records.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// A Record is a single stored record.
type Record struct {
	Seq   int64  // position in the store, starting at 1
	ID    string // unique identifier assigned on insert
	Class string // class identifier of the record
	Body  string // record text, without separator
	Hash  string // hash field of the record, or ""
}

// Open opens or creates a store in the SQLite database at path.
// Use ":memory:" for a store that does not outlive the process.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database %q: %w", path, err)
	}
	// A :memory: database is private to its connection.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("open database %q: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create records table: %w", err)
	}
	return &Store{db: db, log: slog.New(slog.DiscardHandler)}, nil
}

// SetLogger sets the logger that receives events from s. A nil logger
// discards events.
func (s *Store) SetLogger(lg *slog.Logger) {
	if lg == nil {
		lg = slog.New(slog.DiscardHandler)
	}
	s.log = lg
}

// Write stores p as one record. Surrounding whitespace, including a trailing
// record separator, is removed. It reports an error without storing anything
// if p is not a single JSON object with a leading class.
func (s *Store) Write(p []byte) (int, error) {
	if _, err := s.Insert(context.Background(), string(bytes.TrimSpace(p))); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Insert stores text as one record and returns the record as stored.
func (s *Store) Insert(ctx context.Context, text string) (Record, error) {
	obj, err := record.Parse([]byte(text))
	if err != nil {
		return Record{}, fmt.Errorf("insert record: %w", err)
	}
	rec := Record{ID: uuid.NewString(), Class: obj.Class, Body: text, Hash: obj.Hash}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO records (id, class, body, hash) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.Class, rec.Body, rec.Hash)
	if err != nil {
		return Record{}, fmt.Errorf("insert record: %w", err)
	}
	rec.Seq, err = res.LastInsertId()
	if err != nil {
		return Record{}, fmt.Errorf("insert record: %w", err)
	}
	s.log.Debug("stored record", "seq", rec.Seq, "id", rec.ID, "class", rec.Class)
	return rec, nil
}

// Records returns all the records in s, in the order they were stored.
func (s *Store) Records(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, id, class, body, hash FROM records ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.Seq, &r.ID, &r.Class, &r.Body, &r.Hash); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Bodies returns the text of all the records in s, in the order they were
// stored.
func (s *Store) Bodies(ctx context.Context) ([]string, error) {
	recs, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Body
	}
	return out, nil
}

// Len reports the number of records in s.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// Close closes the database underlying s.
func (s *Store) Close() error { return s.db.Close() }
