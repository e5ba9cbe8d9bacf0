package delivery

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, hPage *PageHandler, hMedia *MediaHandler, metrics http.Handler, metricsToken string) {

	r.Get("/", Root)
	r.Get("/health", Health)

	// public landing page
	r.Get("/page/{id}", hPage.Show)
	r.Get("/media/{filename}", hMedia.Serve)

	r.With(TokenMiddleware(metricsToken)).Handle("/metrics", metrics)
}
