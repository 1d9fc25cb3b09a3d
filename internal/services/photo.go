package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"photo-gallery/internal/models"
	"photo-gallery/internal/repository"
)

const photoURLPrefix = "/photos/"

// ErrNoOriginalName is returned when an upload carries no usable filename
var ErrNoOriginalName = errors.New("original filename is required")

// PhotoIndex is an optional record of uploads kept alongside the storage
type PhotoIndex interface {
	Add(ctx context.Context, photo *models.Photo) error
	List(ctx context.Context) ([]*models.Photo, error)
}

// PhotoService handles photo-related business logic
type PhotoService struct {
	storage       repository.PhotoStorage
	index         PhotoIndex
	uploaderLabel string
	clock         Clock
}

// NewPhotoService creates a new photo service. index may be nil, in which case
// the storage listing is the source of truth.
func NewPhotoService(storage repository.PhotoStorage, index PhotoIndex, uploaderLabel string) *PhotoService {
	return &PhotoService{
		storage:       storage,
		index:         index,
		uploaderLabel: uploaderLabel,
		clock:         RealClock{},
	}
}

// PhotoURL returns the relative URL under which a stored photo is served.
// The id is escaped as a single path segment.
func PhotoURL(id string) string {
	return photoURLPrefix + url.PathEscape(id)
}

// Init prepares the underlying storage
func (s *PhotoService) Init(ctx context.Context) error {
	return s.storage.Init(ctx)
}

// Save stores content as "{unix millis}-{original name}" and returns its record.
// Two saves in the same millisecond with the same name write the same file.
func (s *PhotoService) Save(ctx context.Context, content io.Reader, originalName, uploader string) (*models.Photo, error) {
	base := filepath.Base(strings.ReplaceAll(originalName, `\`, "/"))
	if base == "." || base == "/" || base == ".." || strings.TrimSpace(base) == "" {
		return nil, ErrNoOriginalName
	}

	now := s.clock.Now()
	id := strconv.FormatInt(now.UnixMilli(), 10) + "-" + base

	if err := s.storage.Save(ctx, id, content); err != nil {
		return nil, fmt.Errorf("failed to save photo: %w", err)
	}

	photo := &models.Photo{
		ID:        id,
		URL:       PhotoURL(id),
		Username:  s.uploaderLabel,
		CreatedAt: now,
	}
	if s.index != nil {
		if uploader != "" {
			photo.Username = uploader
		}
		if err := s.index.Add(ctx, photo); err != nil {
			return nil, fmt.Errorf("failed to index photo: %w", err)
		}
	}

	return photo, nil
}

// List returns every stored photo ordered by id
func (s *PhotoService) List(ctx context.Context) ([]*models.Photo, error) {
	if s.index != nil {
		photos, err := s.index.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list indexed photos: %w", err)
		}
		return photos, nil
	}

	names, err := s.storage.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	sort.Strings(names)

	photos := make([]*models.Photo, 0, len(names))
	for _, name := range names {
		photos = append(photos, &models.Photo{
			ID:       name,
			URL:      PhotoURL(name),
			Username: s.uploaderLabel,
		})
	}

	return photos, nil
}

// Open returns the content of a stored photo
func (s *PhotoService) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	return s.storage.Open(ctx, id)
}
