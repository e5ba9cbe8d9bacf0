package delivery

import (
	"net/http"
	"path/filepath"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/qrpage/internal/models"
	"github.com/Vovarama1992/qrpage/internal/ports"
	"github.com/go-chi/chi/v5"
)

type MediaHandler struct {
	media ports.MediaStore
	log   *logger.ZapLogger
}

func NewMediaHandler(media ports.MediaStore, log *logger.ZapLogger) *MediaHandler {
	return &MediaHandler{
		media: media,
		log:   log,
	}
}

// GET /media/{filename}
func (h *MediaHandler) Serve(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	if !models.ValidMediaName(name) || !h.media.Exists(name) {
		http.NotFound(w, r)
		return
	}

	h.log.Log(logger.LogEntry{
		Level:   "debug",
		Message: "media served",
		Fields:  map[string]any{"file": name},
	})

	http.ServeFile(w, r, filepath.Join(h.media.Dir(), name))
}
