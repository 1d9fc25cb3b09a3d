package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrPhotoNotFound is returned when a stored photo does not exist
	ErrPhotoNotFound = errors.New("photo not found")
	// ErrInvalidPhotoName is returned for names that would leave the store
	ErrInvalidPhotoName = errors.New("invalid photo name")
)

// PhotoStorage is a flat namespace of photo files
type PhotoStorage interface {
	Init(ctx context.Context) error
	Save(ctx context.Context, name string, r io.Reader) error
	List(ctx context.Context) ([]string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// ValidatePhotoName rejects empty names, dot entries and anything with a path separator
func ValidatePhotoName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidPhotoName, name)
	}
	return nil
}

// LocalPhotoStorage keeps photos as files in a single directory
type LocalPhotoStorage struct {
	dir string
}

// NewLocalPhotoStorage creates a new directory-backed photo storage
func NewLocalPhotoStorage(dir string) *LocalPhotoStorage {
	return &LocalPhotoStorage{dir: dir}
}

// Dir returns the backing directory
func (s *LocalPhotoStorage) Dir() string {
	return s.dir
}

// Init creates the photo directory if absent
func (s *LocalPhotoStorage) Init(ctx context.Context) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create photo directory: %w", err)
	}
	return nil
}

// Save writes r to name, replacing any file with the same name
func (s *LocalPhotoStorage) Save(ctx context.Context, name string, r io.Reader) error {
	if err := ValidatePhotoName(name); err != nil {
		return err
	}

	path := filepath.Join(s.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create photo file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write photo file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to close photo file: %w", err)
	}

	return nil
}

// List returns the names of all files in the directory in lexical order
func (s *LocalPhotoStorage) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}

	return names, nil
}

// Open opens a stored photo. The returned file also implements io.Seeker.
func (s *LocalPhotoStorage) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ValidatePhotoName(name); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrPhotoNotFound
		}
		return nil, fmt.Errorf("failed to open photo file: %w", err)
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat photo file: %w", err)
	}
	if st.IsDir() {
		f.Close()
		return nil, ErrPhotoNotFound
	}

	return f, nil
}
