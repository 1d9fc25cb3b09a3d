package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"photo-gallery/internal/repository"
	"photo-gallery/internal/services"

	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T, secret string) *services.UserService {
	t.Helper()
	repo := repository.NewCredentialRepository(filepath.Join(t.TempDir(), "credentials.dat"), services.HashPassword)
	_, err := repo.Init()
	require.NoError(t, err)
	return services.NewUserService(repo, secret, time.Hour)
}

func newPhotoService(t *testing.T) (*services.PhotoService, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "photos")
	svc := services.NewPhotoService(repository.NewLocalPhotoStorage(dir), nil, "demo")
	require.NoError(t, svc.Init(context.Background()))
	return svc, dir
}

func multipartRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("note", "no file here"))
	}
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}
