package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/danielhkuo/pollbook/auth"
	"github.com/danielhkuo/pollbook/cliparse"
	"github.com/danielhkuo/pollbook/db"
	"github.com/danielhkuo/pollbook/engine"
	"github.com/danielhkuo/pollbook/events"
	"github.com/danielhkuo/pollbook/kvstore"
	"github.com/danielhkuo/pollbook/memstore"
	"github.com/danielhkuo/pollbook/middleware"
	"github.com/danielhkuo/pollbook/router"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Open the poll store
	store, closer, err := openStore(cfg)
	if err != nil {
		slog.Error("store initialization failed", "store", cfg.StoreType, "error", err)
		os.Exit(1)
	}
	defer closer.Close()
	slog.Info("Store ready", "store", cfg.StoreType)

	// Vote events go to websocket subscribers and the log
	hub := events.NewHub()
	defer hub.Close()

	registry := engine.NewRegistry(store, engine.SystemClock{}, auth.ContextIdentity{},
		engine.WithEvents(events.Multi{hub, events.LogSink{}}),
	)

	// Create router
	mux := router.NewRouter(registry, hub, cfg)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		hub.Close()
		if err := server.Shutdown(ctx); err != nil {
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

// openStore builds the engine.Store selected by cfg.StoreType
func openStore(cfg cliparse.Config) (engine.Store, io.Closer, error) {
	switch cfg.StoreType {
	case cliparse.StoreMemory:
		return memstore.New(), io.NopCloser(nil), nil
	case cliparse.StoreLevelDB:
		s, err := kvstore.Open(cfg.DatabaseURL, cfg.CacheSize)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case cliparse.StorePostgres:
		s, err := db.Open(db.DriverPostgres, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		s, err := db.Open(db.DriverSQLite, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	}
}
