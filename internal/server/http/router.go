package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// NewRouter 组装 API 路由；webDir 非空时同时挂载静态页面。
func NewRouter(h *Handler, webDir, mobileDir string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(h.log))
	r.Use(middleware.Recoverer)

	r.Get("/health", h.handleHealth)

	r.Route("/api/game", func(r chi.Router) {
		r.Post("/new", h.handleNewGame)
		r.Post("/move", h.handleMove)
		r.Post("/undo", h.handleUndo)
		r.Get("/state/{id}", h.handleState)
		r.Get("/ws/{id}", h.handleWatch)
	})
	r.Post("/api/ai/move", h.handleAIMove)
	r.Get("/api/settings/difficulty", h.handleGetDifficulty)
	r.Post("/api/settings/difficulty", h.handleSetDifficulty)

	if webDir != "" {
		RegisterStaticRoutes(r, webDir, mobileDir)
	}
	return r
}

// accessLog 每个请求一行结构化日志。
func accessLog(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("http request")
		})
	}
}
