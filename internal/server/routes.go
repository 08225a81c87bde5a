package server

import (
	"log/slog"
	"net/http"

	"github.com/maauso/framestrip-api/internal/metrics"
)

// Config contains server configuration options.
type Config struct {
	// AllowedOrigins is the list of allowed CORS origins.
	AllowedOrigins []string
	// ObjectsDir, when set, is served read-only under /objects/.
	// It is used with the local storage driver so returned URLs resolve.
	ObjectsDir string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		AllowedOrigins: []string{"*"},
	}
}

// NewRouter creates a new HTTP router with all routes configured.
func NewRouter(h *Handlers, logger *slog.Logger, cfg Config) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health)
	mux.Handle("POST /extract-frames", metrics.ObservedHandlerFunc("extract_frames", h.ExtractFrames))
	mux.Handle("POST /thumbnails", metrics.ObservedHandlerFunc("thumbnails", h.CreateThumbnail))
	mux.Handle("POST /videos", metrics.ObservedHandlerFunc("videos", h.CreateVideo))
	mux.Handle("POST /profile-pictures", metrics.ObservedHandlerFunc("profile_pictures", h.UploadProfilePicture))
	mux.Handle("DELETE /artifacts", metrics.ObservedHandlerFunc("delete_artifact", h.DeleteArtifact))
	mux.Handle("GET /runs/{id}", metrics.ObservedHandlerFunc("get_run", h.GetRun))
	mux.Handle("GET /metrics", metrics.Handler())

	if cfg.ObjectsDir != "" {
		mux.Handle("GET /objects/", http.StripPrefix("/objects/", http.FileServer(http.Dir(cfg.ObjectsDir))))
	}

	chain := ChainMiddleware(
		RecoveryMiddleware(logger),
		LoggingMiddleware(logger),
		CORSMiddleware(cfg.AllowedOrigins),
	)

	return chain(mux)
}
