package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"docsummary/internal/domain"
)

func (d *Database) InsertDocument(
	ctx context.Context,
	doc domain.Document,
) (int64, error) {
	filename := strings.TrimSpace(doc.Filename)
	if filename == "" {
		return 0, errors.New("filename is empty")
	}

	query := `insert into documents
		(filename, filepath, char_count, chunk_count, summary)
		values (?, ?, ?, ?, ?)`

	res, err := d.db.ExecContext(
		ctx,
		query,
		filename,
		doc.Filepath,
		doc.CharCount,
		doc.ChunkCount,
		doc.Summary,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to execute query: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to fetch inserted ID: %w", err)
	}

	return id, nil
}

func (d *Database) RecentDocuments(
	ctx context.Context,
	limit int64,
) ([]domain.Document, error) {
	query := `select id, filename, filepath, char_count, chunk_count, summary, created_at
		from documents
		order by created_at desc, id desc
		limit ?`

	rows, err := d.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() {
		if err = rows.Close(); err != nil {
			d.log.ErrorContext(ctx, "Failed to close rows",
				"error", err,
				"operation", "RecentDocuments")
		}
	}()

	var docs []domain.Document
	for rows.Next() {
		var doc domain.Document
		if err = rows.Scan(
			&doc.ID,
			&doc.Filename,
			&doc.Filepath,
			&doc.CharCount,
			&doc.ChunkCount,
			&doc.Summary,
			&doc.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		docs = append(docs, doc)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return docs, nil
}

// GetDocument returns nil without error when no document has the given ID.
func (d *Database) GetDocument(
	ctx context.Context,
	id int64,
) (*domain.Document, error) {
	query := `select id, filename, filepath, char_count, chunk_count, summary, created_at
		from documents
		where id = ?`

	var doc domain.Document
	err := d.db.QueryRowContext(ctx, query, id).Scan(
		&doc.ID,
		&doc.Filename,
		&doc.Filepath,
		&doc.CharCount,
		&doc.ChunkCount,
		&doc.Summary,
		&doc.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}

	return &doc, nil
}

// DeleteDocumentsBefore removes every document created before cutoff and
// returns the filepaths of the removed uploads so the caller can delete
// the files as well.
func (d *Database) DeleteDocumentsBefore(
	ctx context.Context,
	cutoff time.Time,
) ([]string, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	rows, err := tx.QueryContext(
		ctx,
		"select filepath from documents where created_at < ?",
		cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}

	var filepaths []string
	for rows.Next() {
		var path string
		if err = rows.Scan(&path); err != nil {
			_ = rows.Close()

			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		filepaths = append(filepaths, path)
	}

	if err = rows.Err(); err != nil {
		_ = rows.Close()

		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	if err = rows.Close(); err != nil {
		return nil, fmt.Errorf("failed to close rows: %w", err)
	}

	if _, err = tx.ExecContext(
		ctx,
		"delete from documents where created_at < ?",
		cutoff,
	); err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return filepaths, nil
}
