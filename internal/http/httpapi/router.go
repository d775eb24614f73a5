package httpapi

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"mediabox/internal/http/handlers"
	"mediabox/internal/infra"
	"mediabox/internal/middleware"
)

func NewRouter(app *handlers.App, cfg *infra.Config, logger infra.Logger) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(
		chimw.RealIP,
		chimw.Recoverer,
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.CORS(cfg.AllowedOrigins),
		middleware.RateLimit(cfg),
	)

	r.Get("/healthz", app.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/resources", func(r chi.Router) {
			r.Get("/", app.ListResources)
			r.Get("/{assetID}", app.GetResource)
		})

		r.Post("/upload", app.Upload)
		r.Delete("/delete", app.Delete)
		r.Post("/sign", app.SignUploadParams)

		r.Route("/editor", func(r chi.Router) {
			r.Post("/preview", app.PreviewEdit)
			r.Post("/save", app.SaveEdit)
			r.Post("/save-copy", app.SaveEditCopy)
		})

		r.Route("/creations", func(r chi.Router) {
			r.Get("/", app.GetCreation)
			r.Delete("/", app.CancelCreation)
			r.Post("/collage", app.CreateCollage)
			r.Post("/animation", app.CreateAnimation)
			r.Post("/color-pop", app.CreateColorPop)
			r.Post("/save", app.SaveCreation)
		})
	})

	return r
}
