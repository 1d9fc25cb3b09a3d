package repository

import (
	"context"
	"fmt"

	"photo-gallery/internal/migrations"
	"photo-gallery/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PhotoIndexRepository records uploaded photos in Postgres
type PhotoIndexRepository struct {
	db *pgxpool.Pool
}

// NewPhotoIndexRepository creates a new photo index repository
func NewPhotoIndexRepository(db *pgxpool.Pool) *PhotoIndexRepository {
	return &PhotoIndexRepository{db: db}
}

// Migrate applies the embedded schema migrations
func (r *PhotoIndexRepository) Migrate(ctx context.Context) error {
	sqlDB := stdlib.OpenDBFromPool(r.db)
	defer sqlDB.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Add records a photo, replacing an existing row with the same id
func (r *PhotoIndexRepository) Add(ctx context.Context, photo *models.Photo) error {
	query := `
		INSERT INTO photos (id, url, uploader, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET url = EXCLUDED.url, uploader = EXCLUDED.uploader, created_at = EXCLUDED.created_at
	`
	_, err := r.db.Exec(ctx, query, photo.ID, photo.URL, photo.Username, photo.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to index photo: %w", err)
	}
	return nil
}

// List returns all indexed photos ordered by id
func (r *PhotoIndexRepository) List(ctx context.Context) ([]*models.Photo, error) {
	query := `
		SELECT id, url, uploader, created_at
		FROM photos
		ORDER BY id ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get photos: %w", err)
	}
	defer rows.Close()

	photos := []*models.Photo{}
	for rows.Next() {
		var photo models.Photo
		if err := rows.Scan(&photo.ID, &photo.URL, &photo.Username, &photo.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, &photo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}

	return photos, nil
}
