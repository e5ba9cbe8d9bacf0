package delivery

import (
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/qrpage/internal/delivery/views"
	"github.com/Vovarama1992/qrpage/internal/observability"
	"github.com/Vovarama1992/qrpage/internal/ports"
	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
)

type PageHandler struct {
	pages   ports.PageService
	metrics *observability.Metrics
	log     *logger.ZapLogger
}

func NewPageHandler(pages ports.PageService, metrics *observability.Metrics, log *logger.ZapLogger) *PageHandler {
	return &PageHandler{
		pages:   pages,
		metrics: metrics,
		log:     log,
	}
}

// GET /page/{id}
func (h *PageHandler) Show(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	view, err := h.pages.View(r.Context(), id)
	if err != nil {
		h.log.Log(logger.LogEntry{
			Level:   "error",
			Message: "page view failed",
			Fields:  map[string]any{"pageID": id},
			Error:   err,
		})
		templ.Handler(views.Unavailable(), templ.WithStatus(http.StatusServiceUnavailable)).ServeHTTP(w, r)
		return
	}

	h.metrics.ObservePageView(view.HasContent)
	templ.Handler(views.Page(view)).ServeHTTP(w, r)
}
