package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/justinas/alice"
	"github.com/parisxmas/OxiDB/qrform/internal/auth"
	"github.com/parisxmas/OxiDB/qrform/internal/handler"
	mw "github.com/parisxmas/OxiDB/qrform/internal/middleware"
)

type Handlers struct {
	Auth       *handler.AuthHandler
	Submission *handler.SubmissionHandler
	QRCode     *handler.QRCodeHandler
	Health     *handler.HealthHandler
}

// New wires the API under /api. When staticDir is set its files are
// served at the root.
func New(tokens *auth.Tokens, h Handlers, staticDir string) http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/submit", h.Submission.Submit)
		r.Post("/login", h.Auth.Login)
		r.Get("/qrcode", h.QRCode.Generate)
		r.Get("/health", h.Health.Health)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(tokens))

			r.Get("/submissions", h.Submission.List)
			r.Delete("/submissions/{id}", h.Submission.Delete)
		})
	})

	if staticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(staticDir)))
	}

	return alice.New(mw.Recovery, mw.RequestID, mw.Logger, mw.CORS).Then(r)
}
