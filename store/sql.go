/*
 * tumblr-import imports posts from a Tumblr JSON archive into a post store.
 * Copyright © 2024 Musing Studio LLC.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 */

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	tumblrimport "github.com/writeas/tumblr-import"
)

const (
	dialectSQLite   = "sqlite3"
	dialectPostgres = "postgres"
)

// SQLStore keeps posts in a posts table in SQLite or PostgreSQL.
type SQLStore struct {
	db      *sql.DB
	dialect string
}

// OpenSQLite opens or creates a SQLite database at path.
func OpenSQLite(path string) (*SQLStore, error) {
	if path == "" {
		path = "tumblr-import.db"
	}
	db, err := sql.Open(dialectSQLite, path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Each connection to ":memory:" is its own database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	s := &SQLStore{db: db, dialect: dialectSQLite}
	if err := s.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// OpenPostgres connects to PostgreSQL with the given connection string.
func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := sql.Open(dialectPostgres, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	s := &SQLStore{db: db, dialect: dialectPostgres}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) initSchema(ctx context.Context) error {
	pk := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.dialect == dialectPostgres {
		pk = "BIGSERIAL PRIMARY KEY"
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS posts (
			id ` + pk + `,
			tumblr_post_id BIGINT NOT NULL,
			post_status TEXT NOT NULL,
			post_type TEXT NOT NULL,
			post_title TEXT NOT NULL,
			post_content TEXT NOT NULL,
			post_content_filtered TEXT NOT NULL,
			post_date TEXT NOT NULL,
			post_modified TEXT NOT NULL,
			tumblr_data TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tumblr_post_id ON posts(tumblr_post_id)`,
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

// rebind turns ? placeholders into $n for PostgreSQL.
func (s *SQLStore) rebind(q string) string {
	if s.dialect != dialectPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) LookupByExternalID(ctx context.Context, externalID int64) (string, bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		s.rebind("SELECT id FROM posts WHERE tumblr_post_id = ? ORDER BY id LIMIT 1"),
		externalID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup tumblr post %d: %w", externalID, err)
	}
	return strconv.FormatInt(id, 10), true, nil
}

func (s *SQLStore) Upsert(ctx context.Context, p *tumblrimport.TargetPost, existingID string) (string, error) {
	if existingID != "" {
		return existingID, s.update(ctx, p, existingID)
	}

	query := `
	INSERT INTO posts (
		tumblr_post_id, post_status, post_type, post_title, post_content,
		post_content_filtered, post_date, post_modified, tumblr_data
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	RETURNING id
	`
	var id int64
	err := s.db.QueryRowContext(ctx, s.rebind(query),
		p.Meta.TumblrPostID, p.Status, p.Type, p.Title, p.Content,
		p.ContentFiltered, p.Date, p.Modified, p.Meta.TumblrData,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert tumblr post %d: %w", p.Meta.TumblrPostID, err)
	}
	return strconv.FormatInt(id, 10), nil
}

func (s *SQLStore) update(ctx context.Context, p *tumblrimport.TargetPost, existingID string) error {
	id, err := strconv.ParseInt(existingID, 10, 64)
	if err != nil {
		return fmt.Errorf("update post %s: %w", existingID, ErrNoSuchRecord)
	}

	query := `
	UPDATE posts SET
		tumblr_post_id = ?,
		post_status = ?,
		post_type = ?,
		post_title = ?,
		post_content = ?,
		post_content_filtered = ?,
		post_date = ?,
		post_modified = ?,
		tumblr_data = ?
	WHERE id = ?
	`
	res, err := s.db.ExecContext(ctx, s.rebind(query),
		p.Meta.TumblrPostID, p.Status, p.Type, p.Title, p.Content,
		p.ContentFiltered, p.Date, p.Modified, p.Meta.TumblrData, id,
	)
	if err != nil {
		return fmt.Errorf("update post %s: %w", existingID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update post %s: %w", existingID, err)
	}
	if n == 0 {
		return fmt.Errorf("update post %s: %w", existingID, ErrNoSuchRecord)
	}
	return nil
}

func (s *SQLStore) GetPost(ctx context.Context, recordID string) (*tumblrimport.StoredPost, error) {
	id, err := strconv.ParseInt(recordID, 10, 64)
	if err != nil {
		return nil, nil
	}

	query := `
	SELECT id, tumblr_post_id, post_status, post_type, post_title, post_content,
	       post_content_filtered, post_date, post_modified, tumblr_data
	FROM posts
	WHERE id = ?
	`
	var (
		p     tumblrimport.StoredPost
		rowID int64
	)
	err = s.db.QueryRowContext(ctx, s.rebind(query), id).Scan(
		&rowID, &p.Meta.TumblrPostID, &p.Status, &p.Type, &p.Title, &p.Content,
		&p.ContentFiltered, &p.Date, &p.Modified, &p.Meta.TumblrData,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get post %s: %w", recordID, err)
	}
	p.ID = strconv.FormatInt(rowID, 10)
	return &p, nil
}

// CountByExternalID returns how many posts carry the given Tumblr id.
func (s *SQLStore) CountByExternalID(ctx context.Context, externalID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		s.rebind("SELECT COUNT(*) FROM posts WHERE tumblr_post_id = ?"), externalID,
	).Scan(&n)
	return n, err
}

// Count returns the number of stored posts.
func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts").Scan(&n)
	return n, err
}
