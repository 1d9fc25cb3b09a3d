package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"photo-gallery/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleWebSocket_ReceivesUploadEvents(t *testing.T) {
	hub := services.NewWSHub()
	svc, _ := newPhotoService(t)
	photoHandler := NewPhotoHandler(svc, hub, 1<<20)

	r := chi.NewRouter()
	r.Get("/ws", NewWebSocketHandler(hub).HandleWebSocket)
	r.Post("/api/upload", photoHandler.UploadPhoto)
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	w := httptest.NewRecorder()
	photoHandler.UploadPhoto(w, multipartRequest(t, UploadField, "live.jpg", []byte("x")))
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg services.WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "photo_uploaded", msg.Type)
	require.NotNil(t, msg.Photo)
	assert.True(t, strings.HasSuffix(msg.Photo.ID, "-live.jpg"))

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	assert.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}
