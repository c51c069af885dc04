// Command packmuled is the sync server: a per-user and per-group JSON
// document store with batch writes and a WebSocket watch channel on group
// trees.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jtroost/packmule/internal/auth"
	"github.com/jtroost/packmule/internal/database"
	"github.com/jtroost/packmule/internal/logging"
	"github.com/jtroost/packmule/internal/server"
)

func main() {
	logger := logging.Setup(os.Getenv("PACKMULE_LOG_LEVEL"))

	port := os.Getenv("PACKMULE_PORT")
	if port == "" {
		port = "8080"
	}
	dbPath := os.Getenv("PACKMULE_DB_PATH")
	if dbPath == "" {
		dbPath = "packmuled.db"
	}
	secret := os.Getenv("PACKMULE_TOKEN_SECRET")
	if secret == "" {
		logger.Error("PACKMULE_TOKEN_SECRET is required")
		os.Exit(1)
	}
	var tokenTTL time.Duration
	if raw := os.Getenv("PACKMULE_TOKEN_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			logger.Error("invalid PACKMULE_TOKEN_TTL", "value", raw, "error", err)
			os.Exit(1)
		}
		tokenTTL = ttl
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("open database", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	issuer := auth.NewTokenIssuer(secret, tokenTTL)
	srv := server.New(db, issuer, logger)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("packmuled listening", "port", port, "db", dbPath)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
