// Package store keeps a local archive of images the user saved from the
// gallery, so they stay browsable without the backend.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS saved_images (
    id TEXT PRIMARY KEY,
    remote_id INTEGER,
    prompt TEXT NOT NULL,
    style TEXT,
    size TEXT,
    image_url TEXT NOT NULL,
    file_path TEXT,
    saved_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_saved_images_saved_at ON saved_images(saved_at);
`

// SavedImage is one locally archived gallery image. RemoteID is the
// backend's numeric id, zero when the image never had one.
type SavedImage struct {
	ID       string
	RemoteID int64
	Prompt   string
	Style    string
	Size     string
	ImageURL string
	FilePath string
	SavedAt  time.Time
}

type Store struct {
	db *sql.DB
}

func New() (*Store, error) {
	dbPath, err := defaultDBPath()
	if err != nil {
		return nil, err
	}
	return NewWithPath(dbPath)
}

func NewWithPath(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

func defaultDBPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".aideck", "saved.db"), nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Save(ctx context.Context, img *SavedImage) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO saved_images (id, remote_id, prompt, style, size, image_url, file_path, saved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		img.ID, nullInt64(img.RemoteID), img.Prompt, nullString(img.Style),
		nullString(img.Size), img.ImageURL, nullString(img.FilePath), img.SavedAt)
	return err
}

func (s *Store) Get(ctx context.Context, id string) (*SavedImage, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, remote_id, prompt, style, size, image_url, file_path, saved_at
		 FROM saved_images WHERE id = ?`, id)
	return scanSavedImage(row.Scan)
}

// List returns saved images, newest first.
func (s *Store) List(ctx context.Context) ([]*SavedImage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, remote_id, prompt, style, size, image_url, file_path, saved_at
		 FROM saved_images ORDER BY saved_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []*SavedImage
	for rows.Next() {
		img, err := scanSavedImage(rows.Scan)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM saved_images WHERE id = ?`, id)
	return err
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM saved_images`).Scan(&count)
	return count, err
}

func scanSavedImage(scan func(...any) error) (*SavedImage, error) {
	img := &SavedImage{}
	var remoteID sql.NullInt64
	var style, size, filePath sql.NullString
	if err := scan(&img.ID, &remoteID, &img.Prompt, &style, &size,
		&img.ImageURL, &filePath, &img.SavedAt); err != nil {
		return nil, err
	}
	img.RemoteID = remoteID.Int64
	img.Style = style.String
	img.Size = size.String
	img.FilePath = filePath.String
	return img, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(n int64) sql.NullInt64 {
	return sql.NullInt64{Int64: n, Valid: n != 0}
}
