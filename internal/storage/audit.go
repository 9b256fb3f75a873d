// Package storage implements the local submission audit log using SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Razaranyi/GreenInvoice/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// AuditStore records every issued invoice so a row whose spreadsheet flag
// could not be written still leaves a durable trail to reconcile against.
type AuditStore struct {
	db     *sql.DB
	dbPath string
}

// NewAuditStore opens (or creates) the audit database at the given path.
func NewAuditStore(dbPath string) (*AuditStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("dbPath cannot be empty")
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &AuditStore{db: db, dbPath: dbPath}, nil
}

// Migrate creates the audit schema.
func (s *AuditStore) Migrate(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS submissions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		row_index INTEGER NOT NULL,
		client_name TEXT NOT NULL,
		client_id TEXT NOT NULL,
		amount REAL NOT NULL,
		document_id TEXT NOT NULL,
		document_number TEXT,
		marked_invoiced INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	)`

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create submissions table: %w", err)
	}

	index := `CREATE INDEX IF NOT EXISTS idx_submissions_client ON submissions(client_name)`
	if _, err := s.db.ExecContext(ctx, index); err != nil {
		return fmt.Errorf("failed to create submissions index: %w", err)
	}

	return nil
}

// RecordSubmission appends one issued invoice to the log.
func (s *AuditStore) RecordSubmission(ctx context.Context, sub model.Submission) error {
	if sub.ClientName == "" {
		return fmt.Errorf("submission client name cannot be empty")
	}
	if sub.DocumentID == "" {
		return fmt.Errorf("submission document ID cannot be empty")
	}

	createdAt := sub.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `INSERT INTO submissions
		(row_index, client_name, client_id, amount, document_id, document_number, marked_invoiced, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		sub.RowIndex, sub.ClientName, sub.ClientID, sub.Amount,
		sub.DocumentID, sub.DocumentNumber, sub.MarkedInvoiced, createdAt)
	if err != nil {
		return fmt.Errorf("failed to record submission: %w", err)
	}

	return nil
}

// Submissions returns the full log, newest first.
func (s *AuditStore) Submissions(ctx context.Context) ([]model.Submission, error) {
	query := `SELECT id, row_index, client_name, client_id, amount,
		document_id, document_number, marked_invoiced, created_at
		FROM submissions ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var subs []model.Submission
	for rows.Next() {
		var sub model.Submission
		if err := rows.Scan(&sub.ID, &sub.RowIndex, &sub.ClientName, &sub.ClientID,
			&sub.Amount, &sub.DocumentID, &sub.DocumentNumber,
			&sub.MarkedInvoiced, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submissions: %w", err)
	}

	return subs, nil
}

// Unreconciled returns submissions whose spreadsheet flag write failed.
func (s *AuditStore) Unreconciled(ctx context.Context) ([]model.Submission, error) {
	query := `SELECT id, row_index, client_name, client_id, amount,
		document_id, document_number, marked_invoiced, created_at
		FROM submissions WHERE marked_invoiced = 0 ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query unreconciled submissions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var subs []model.Submission
	for rows.Next() {
		var sub model.Submission
		if err := rows.Scan(&sub.ID, &sub.RowIndex, &sub.ClientName, &sub.ClientID,
			&sub.Amount, &sub.DocumentID, &sub.DocumentNumber,
			&sub.MarkedInvoiced, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submissions: %w", err)
	}

	return subs, nil
}

// Close closes the database connection.
func (s *AuditStore) Close() error {
	return s.db.Close()
}
