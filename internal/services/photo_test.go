package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"photo-gallery/internal/models"
	"photo-gallery/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryIndex struct {
	mu     sync.Mutex
	photos []*models.Photo
	err    error
}

func (m *memoryIndex) Add(ctx context.Context, photo *models.Photo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.photos = append(m.photos, photo)
	return nil
}

func (m *memoryIndex) List(ctx context.Context) ([]*models.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]*models.Photo{}, m.photos...), nil
}

func newTestPhotoService(t *testing.T, index PhotoIndex) (*PhotoService, *stubClock) {
	t.Helper()
	storage := repository.NewLocalPhotoStorage(filepath.Join(t.TempDir(), "photos"))
	svc := NewPhotoService(storage, index, "demo")
	clock := newStubClock()
	svc.clock = clock
	require.NoError(t, svc.Init(context.Background()))
	return svc, clock
}

func TestPhotoService_ListEmpty(t *testing.T) {
	svc, _ := newTestPhotoService(t, nil)

	photos, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, photos)
	assert.Empty(t, photos)
}

func TestPhotoService_SaveThenList(t *testing.T) {
	svc, clock := newTestPhotoService(t, nil)
	ctx := context.Background()
	payload := []byte("\x89PNG\r\n\x1a\nbinary")

	photo, err := svc.Save(ctx, bytes.NewReader(payload), "cat.png", "someone")
	require.NoError(t, err)

	wantID := "1705314600000-cat.png"
	assert.Equal(t, wantID, photo.ID)
	assert.Equal(t, "/photos/"+wantID, photo.URL)
	assert.Equal(t, "demo", photo.Username)
	assert.Equal(t, clock.Now(), photo.CreatedAt)

	photos, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, &models.Photo{ID: wantID, URL: "/photos/" + wantID, Username: "demo"}, photos[0])

	rc, err := svc.Open(ctx, strings.TrimPrefix(photos[0].URL, "/photos/"))
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestPhotoService_DistinctNamesSameInstant(t *testing.T) {
	svc, _ := newTestPhotoService(t, nil)
	ctx := context.Background()

	a, err := svc.Save(ctx, strings.NewReader("a"), "a.jpg", "")
	require.NoError(t, err)
	b, err := svc.Save(ctx, strings.NewReader("b"), "b.jpg", "")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	photos, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, photos, 2)
	assert.Equal(t, a.ID, photos[0].ID)
	assert.Equal(t, b.ID, photos[1].ID)

	for _, p := range []*models.Photo{a, b} {
		rc, err := svc.Open(ctx, p.ID)
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		assert.Equal(t, strings.TrimSuffix(p.ID[len("1705314600000-"):], ".jpg"), string(data))
	}
}

func TestPhotoService_SameNameSameInstantOverwrites(t *testing.T) {
	svc, clock := newTestPhotoService(t, nil)
	ctx := context.Background()

	_, err := svc.Save(ctx, strings.NewReader("first"), "x.jpg", "")
	require.NoError(t, err)
	_, err = svc.Save(ctx, strings.NewReader("second"), "x.jpg", "")
	require.NoError(t, err)

	photos, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, photos, 1)

	clock.Advance(time.Millisecond)
	_, err = svc.Save(ctx, strings.NewReader("third"), "x.jpg", "")
	require.NoError(t, err)

	photos, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, photos, 2)
}

func TestPhotoService_SaveStripsDirectories(t *testing.T) {
	svc, _ := newTestPhotoService(t, nil)
	ctx := context.Background()

	photo, err := svc.Save(ctx, strings.NewReader("x"), `..\..\evil/../dog.jpg`, "")
	require.NoError(t, err)
	assert.Equal(t, "1705314600000-dog.jpg", photo.ID)

	for _, name := range []string{"", "..", "/", "   "} {
		_, err := svc.Save(ctx, strings.NewReader("x"), name, "")
		assert.ErrorIs(t, err, ErrNoOriginalName, name)
	}
}

func TestPhotoService_WithIndex(t *testing.T) {
	index := &memoryIndex{}
	svc, _ := newTestPhotoService(t, index)
	ctx := context.Background()

	photo, err := svc.Save(ctx, strings.NewReader("x"), "a.jpg", "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", photo.Username)

	anon, err := svc.Save(ctx, strings.NewReader("y"), "b.jpg", "")
	require.NoError(t, err)
	assert.Equal(t, "demo", anon.Username)

	photos, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []*models.Photo{photo, anon}, photos)

	index.err = errors.New("db down")
	_, err = svc.List(ctx)
	assert.Error(t, err)
	_, err = svc.Save(ctx, strings.NewReader("z"), "c.jpg", "")
	assert.Error(t, err)
}

func TestPhotoService_StorageErrors(t *testing.T) {
	storage := repository.NewLocalPhotoStorage(filepath.Join(t.TempDir(), "missing"))
	svc := NewPhotoService(storage, nil, "demo")
	ctx := context.Background()

	_, err := svc.List(ctx)
	assert.Error(t, err)

	_, err = svc.Save(ctx, strings.NewReader("x"), "a.jpg", "")
	assert.Error(t, err)

	_, err = svc.Open(ctx, "a.jpg")
	assert.ErrorIs(t, err, repository.ErrPhotoNotFound)
}

func TestPhotoURL_EscapesID(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{id: "1-cat.png", want: "/photos/1-cat.png"},
		{id: "1-50%.jpg", want: "/photos/1-50%25.jpg"},
		{id: "1-what?.jpg", want: "/photos/1-what%3F.jpg"},
		{id: "1-a#b.jpg", want: "/photos/1-a%23b.jpg"},
		{id: "1-my photo.jpg", want: "/photos/1-my%20photo.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, PhotoURL(tt.id))
		})
	}
}
