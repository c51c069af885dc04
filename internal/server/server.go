// Package server wires the sync server's routes: the document API, group
// management, and the per-group watch socket.
package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/jtroost/packmule/internal/auth"
	"github.com/jtroost/packmule/internal/docstore"
	"github.com/jtroost/packmule/internal/handler"
	"github.com/jtroost/packmule/internal/middleware"
	ws "github.com/jtroost/packmule/internal/websocket"
)

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	documentH   *handler.DocumentHandler
	groupH      *handler.GroupHandler
	issuer      *auth.TokenIssuer
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, issuer *auth.TokenIssuer, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))
	docs := docstore.New(db)

	return &Server{
		db:          db,
		hub:         hub,
		documentH:   handler.NewDocumentHandler(docs, hub, logger.With("component", "documents")),
		groupH:      handler.NewGroupHandler(docs, hub, logger.With("component", "groups")),
		issuer:      issuer,
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// Hub exposes the watch hub, for shutdown accounting.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()
	outerMux.HandleFunc("GET /health", s.healthHandler)

	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.issuer)
	outerMux.Handle("/api/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Group management. Lookup is the invite-code entry point, so it is
	// rate limited to slow down code guessing.
	mux.HandleFunc("GET /api/groups/lookup", s.rateLimitedHandler(s.groupH.Lookup))
	mux.HandleFunc("GET /api/groups/{id}", s.groupH.Get)
	mux.HandleFunc("PUT /api/groups/{id}", s.groupH.Put)
	mux.HandleFunc("DELETE /api/groups/{id}", s.groupH.Delete)

	// Group change notifications.
	mux.HandleFunc("GET /api/groups/{id}/watch", ws.HandleWatch(s.hub, s.logger.With("component", "watch")))

	// Shared group collections.
	mux.HandleFunc("GET /api/groups/{id}/{collection}", s.documentH.ListGroupDocs)
	mux.HandleFunc("GET /api/groups/{id}/{collection}/{docId}", s.documentH.GetGroupDoc)
	mux.HandleFunc("PUT /api/groups/{id}/{collection}/{docId}", s.documentH.PutGroupDoc)
	mux.HandleFunc("DELETE /api/groups/{id}/{collection}/{docId}", s.documentH.DeleteGroupDoc)

	// Per-user collections.
	mux.HandleFunc("GET /api/users/{uid}/{collection}", s.documentH.ListUserDocs)
	mux.HandleFunc("GET /api/users/{uid}/{collection}/{docId}", s.documentH.GetUserDoc)
	mux.HandleFunc("PUT /api/users/{uid}/{collection}/{docId}", s.documentH.PutUserDoc)
	mux.HandleFunc("DELETE /api/users/{uid}/{collection}/{docId}", s.documentH.DeleteUserDoc)

	// Transactional flush.
	mux.HandleFunc("POST /api/batch", s.documentH.Batch)
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
