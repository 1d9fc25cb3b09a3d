package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"photo-gallery/internal/models"
)

const (
	DefaultUsername = "demo"
	DefaultPassword = "demo123"
)

// ErrCredentialsCorrupt is returned when the credential file cannot be parsed
var ErrCredentialsCorrupt = errors.New("credential store is corrupt")

// CredentialRepository reads the username -> digest mapping from a JSON file
type CredentialRepository struct {
	path string
	hash func(string) string
}

// NewCredentialRepository creates a new credential repository. hash produces the
// digest stored for the seeded account.
func NewCredentialRepository(path string, hash func(string) string) *CredentialRepository {
	return &CredentialRepository{path: path, hash: hash}
}

// Path returns the credential file location
func (r *CredentialRepository) Path() string {
	return r.path
}

// Init creates the credential file with the demo account if it does not exist.
// An existing file is never touched.
func (r *CredentialRepository) Init() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create credential directory: %w", err)
	}

	f, err := os.OpenFile(r.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create credential file: %w", err)
	}
	defer f.Close()

	creds := models.Credentials{DefaultUsername: r.hash(DefaultPassword)}
	if err := json.NewEncoder(f).Encode(creds); err != nil {
		return false, fmt.Errorf("failed to write credential file: %w", err)
	}

	return true, nil
}

// Load reads the whole credential mapping
func (r *CredentialRepository) Load() (models.Credentials, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credential file: %w", err)
	}

	var creds models.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCredentialsCorrupt, err)
	}
	if creds == nil {
		return nil, ErrCredentialsCorrupt
	}

	return creds, nil
}
