package handlers

import (
	"errors"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"net/url"
	"path"
	"time"

	"photo-gallery/internal/middleware"
	"photo-gallery/internal/models"
	"photo-gallery/internal/repository"
	"photo-gallery/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// UploadField is the multipart form field carrying the photo
const UploadField = "photo"

// PhotoHandler handles photo-related HTTP requests
type PhotoHandler struct {
	photoService   *services.PhotoService
	wsHub          *services.WSHub
	maxUploadBytes int64
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(photoService *services.PhotoService, wsHub *services.WSHub, maxUploadBytes int64) *PhotoHandler {
	return &PhotoHandler{
		photoService:   photoService,
		wsHub:          wsHub,
		maxUploadBytes: maxUploadBytes,
	}
}

// GetPhotos handles GET /api/photos
func (h *PhotoHandler) GetPhotos(w http.ResponseWriter, r *http.Request) {
	photos, err := h.photoService.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list photos")
		respondError(w, "Error reading photos", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, models.PhotosResponse{Success: true, Photos: photos})
}

// UploadPhoto handles POST /api/upload
func (h *PhotoHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := middleware.GetUsername(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	file, header, err := r.FormFile(UploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, "File too large", http.StatusRequestEntityTooLarge)
			return
		}
		log.Debug().Err(err).Msg("Upload without file")
		respondError(w, "No file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	photo, err := h.photoService.Save(ctx, file, header.Filename, username)
	if err != nil {
		if errors.Is(err, services.ErrNoOriginalName) {
			respondError(w, "No file uploaded", http.StatusBadRequest)
			return
		}
		log.Error().
			Err(err).
			Str("filename", header.Filename).
			Msg("Failed to save photo")
		respondError(w, "Error uploading file", http.StatusInternalServerError)
		return
	}

	log.Info().
		Str("photo_id", photo.ID).
		Int64("size", header.Size).
		Str("username", username).
		Msg("Photo uploaded")

	if h.wsHub != nil {
		h.wsHub.NotifyPhotoUploaded(photo)
	}

	respondJSON(w, http.StatusOK, models.UploadResponse{Success: true, URL: photo.URL})
}

// ServePhoto handles GET /photos/{filename}
func (h *PhotoHandler) ServePhoto(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
	}

	rc, err := h.photoService.Open(r.Context(), name)
	if err != nil {
		if errors.Is(err, repository.ErrPhotoNotFound) || errors.Is(err, repository.ErrInvalidPhotoName) {
			http.NotFound(w, r)
			return
		}
		log.Error().Err(err).Str("photo_id", name).Msg("Failed to open photo")
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	defer rc.Close()

	if rs, ok := rc.(io.ReadSeeker); ok {
		var modTime time.Time
		if st, ok := rc.(interface{ Stat() (fs.FileInfo, error) }); ok {
			if info, err := st.Stat(); err == nil {
				modTime = info.ModTime()
			}
		}
		http.ServeContent(w, r, name, modTime, rs)
		return
	}

	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	if _, err := io.Copy(w, rc); err != nil {
		log.Debug().Err(err).Str("photo_id", name).Msg("Failed to stream photo")
	}
}
