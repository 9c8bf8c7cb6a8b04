package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/speechpath/speechpath-server/internal/api/handlers"
	"github.com/speechpath/speechpath-server/internal/api/middleware"
	"github.com/speechpath/speechpath-server/internal/config"
	"github.com/speechpath/speechpath-server/internal/service"
	"github.com/speechpath/speechpath-server/internal/websocket"
)

func NewRouter(services *service.Services, hub *websocket.Hub, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	authHandler := handlers.NewAuthHandler(services.Auth, cfg)
	audioHandler := handlers.NewAudioHandler(services.Audio, cfg.MaxUploadBytes())
	analysisHandler := handlers.NewAnalysisHandler(services.Analysis)
	reportHandler := handlers.NewReportHandler(services.Report)
	wsHandler := handlers.NewWebSocketHandler(hub, services.Auth, services.Analysis)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.Post("/forgot-password", authHandler.ForgotPassword)
			r.Post("/reset-password", authHandler.ResetPassword)
			r.Get("/verify-reset-token/{token}", authHandler.VerifyResetToken)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))
				r.Get("/user", authHandler.Me)
				r.Post("/logout", authHandler.Logout)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))

			r.Route("/audio", func(r chi.Router) {
				r.Post("/upload", audioHandler.Upload)
				r.Get("/", audioHandler.List)
				r.Delete("/{id}", audioHandler.Delete)
				r.Get("/{id}/stream", audioHandler.Stream)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Post("/", reportHandler.Create)
				r.Get("/", reportHandler.List)
				r.Delete("/{id}", reportHandler.Delete)
			})
		})

		r.Route("/analysis", func(r chi.Router) {
			// Websocket auth happens in the handler via query token;
			// browsers cannot set headers on websocket dials.
			r.Get("/{id}/ws", wsHandler.Watch)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))
				r.Post("/", analysisHandler.Create)
				r.Get("/", analysisHandler.List)
				r.Get("/{id}", analysisHandler.Get)
				r.Get("/{id}/pdf", analysisHandler.DownloadPDF)
				r.Get("/audio/{audioFileId}", analysisHandler.LatestForAudioFile)
			})
		})
	})

	return r
}
