// Command packmule is the client agent: it owns the local list state, the
// durable on-device slot, and the sync engine that mirrors everything to a
// packmuled server. SIGHUP triggers a refresh, the way a UI would on
// regaining visibility.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jtroost/packmule/internal/backup"
	"github.com/jtroost/packmule/internal/export"
	"github.com/jtroost/packmule/internal/group"
	"github.com/jtroost/packmule/internal/logging"
	"github.com/jtroost/packmule/internal/model"
	"github.com/jtroost/packmule/internal/persist"
	"github.com/jtroost/packmule/internal/remote"
	"github.com/jtroost/packmule/internal/state"
	"github.com/jtroost/packmule/internal/sync"
)

func main() {
	var (
		exportPath = flag.String("export", "", "write the current state to this file and exit")
		importPath = flag.String("import", "", "replace the current state from this file and exit")
	)
	flag.Parse()

	logger := logging.Setup(os.Getenv("PACKMULE_LOG_LEVEL"))

	dbPath := os.Getenv("PACKMULE_DB_PATH")
	if dbPath == "" {
		dbPath = "packmule.db"
	}

	slot, err := persist.Open(dbPath, logger)
	if err != nil {
		logger.Error("open slot", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer slot.Close()

	loaded, ok, err := slot.Load()
	if err != nil {
		logger.Error("load state", "error", err)
		os.Exit(1)
	}
	var initial state.State
	if ok {
		initial = state.FromPersisted(loaded)
	}
	store := state.New(initial, slot, logger)
	store.Initialize()

	passphrase := os.Getenv("PACKMULE_EXPORT_PASSPHRASE")
	switch {
	case *exportPath != "":
		if err := export.WriteFile(*exportPath, store.Snapshot().Persisted(), passphrase); err != nil {
			logger.Error("export", "path", *exportPath, "error", err)
			os.Exit(1)
		}
		logger.Info("exported", "path", *exportPath)
		return
	case *importPath != "":
		p, err := export.ReadFile(*importPath, passphrase)
		if err != nil {
			logger.Error("import", "path", *importPath, "error", err)
			os.Exit(1)
		}
		store.ReplaceCollections(p)
		logger.Info("imported", "path", *importPath)
		return
	}

	uid := os.Getenv("PACKMULE_UID")
	serverURL := os.Getenv("PACKMULE_SERVER_URL")
	token := os.Getenv("PACKMULE_TOKEN")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var engine *sync.Engine
	if serverURL != "" && token != "" && uid != "" {
		user := model.User{
			UID:         uid,
			DisplayName: envOr("PACKMULE_DISPLAY_NAME", uid),
			Email:       os.Getenv("PACKMULE_EMAIL"),
		}
		client := remote.NewClient(remote.Config{BaseURL: serverURL, Token: token}, logger)
		groups := group.NewService(client, store, user, logger)
		engine = sync.NewEngine(store, client, groups, user, sync.Config{}, logger)
		if err := engine.Start(ctx); err != nil {
			logger.Error("start sync", "error", err)
			os.Exit(1)
		}
		defer engine.Stop()
		logger.Info("sync running", "server", serverURL, "uid", uid)
	} else {
		logger.Info("sync disabled, running locally", "db", dbPath)
	}

	snapshots := backup.NewManager(backup.Config{
		S3: backup.S3Config{
			Endpoint:  os.Getenv("PACKMULE_S3_ENDPOINT"),
			Bucket:    os.Getenv("PACKMULE_S3_BUCKET"),
			Region:    envOr("PACKMULE_S3_REGION", "auto"),
			AccessKey: os.Getenv("PACKMULE_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("PACKMULE_S3_SECRET_KEY"),
		},
		Prefix:     uid,
		Passphrase: os.Getenv("PACKMULE_BACKUP_PASSPHRASE"),
		Interval:   envDuration("PACKMULE_BACKUP_INTERVAL", logger),
	}, store, nil, logger)
	snapshots.Start(ctx)
	defer snapshots.Stop()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	for sig := range sigs {
		if sig == syscall.SIGHUP {
			if engine == nil {
				continue
			}
			refreshCtx, cancelRefresh := context.WithTimeout(ctx, 30*time.Second)
			if err := engine.Refresh(refreshCtx); err != nil {
				logger.Error("refresh", "error", err)
			}
			cancelRefresh()
			continue
		}
		break
	}
	logger.Info("shutting down")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, logger *slog.Logger) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return 0
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		logger.Warn("invalid duration, using default", "key", key, "value", raw)
		return 0
	}
	return d
}
