package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"videosearch-backend/internal/handlers"
	"videosearch-backend/internal/middleware"
	"videosearch-backend/internal/websocket"
)

func New(
	searchHandler *handlers.SearchHandler,
	videoHandler *handlers.VideoHandler,
	playbackHandler *handlers.PlaybackHandler,
	ingestHandler *handlers.IngestHandler,
	jobHandler *handlers.JobHandler, // nil without a database
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Ingest rate limiter (20 req/min per IP)
	ingestLimiter := middleware.NewRateLimiter(20, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Search ────
		r.Post("/search", searchHandler.Search)

		// ──── Videos ────
		r.Route("/videos", func(r chi.Router) {
			r.Get("/", videoHandler.List)
			r.Get("/{id}/segments", videoHandler.GetSegments)
		})
		r.Get("/export", videoHandler.Export)

		// ──── Playback ────
		r.Post("/playback/locate", playbackHandler.Locate)

		// ──── Ingest ────
		r.Route("/ingest", func(r chi.Router) {
			r.Use(ingestLimiter.Middleware)
			r.Post("/upload", ingestHandler.Upload)
			r.Post("/youtube", ingestHandler.IngestYouTube)
		})

		// ──── Jobs ────
		if jobHandler != nil {
			r.Get("/jobs/{id}", jobHandler.GetJob)
		}

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
