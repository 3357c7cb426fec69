package main

import (
	"context"
	"embed"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notekeeper/internal/auth"
	"notekeeper/internal/config"
	"notekeeper/internal/db"
	mcpserver "notekeeper/internal/mcp"
	"notekeeper/internal/notes"
	"notekeeper/internal/notify"
	"notekeeper/internal/reminders"

	"github.com/jmhodges/clock"
)

//go:embed static
var staticFS embed.FS

func main() {
	// Config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	if cfg.UsesDevSecret {
		logger.Warn("JWT_SECRET not set, using the development secret")
	}

	// Context for startup
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Note store
	var store notes.Store
	switch cfg.Store {
	case config.StoreMemory:
		logger.Warn("using in-memory note store; notes are lost on restart")
		store = notes.NewMemoryStore()
	default:
		logger.Info("connecting to MongoDB", "uri", cfg.MongoURI)
		database, err := db.Connect(ctx, cfg.MongoURI, cfg.Database)
		if err != nil {
			log.Fatalf("failed to connect to MongoDB: %v", err)
		}
		defer database.Client().Disconnect(context.Background())
		logger.Info("connected to MongoDB")

		mongoStore := notes.NewMongoStore(database)
		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			logger.Warn("failed to ensure indexes", "error", err)
		}
		store = mongoStore
	}

	// Wire dependencies
	clk := clock.New()
	locks := reminders.NewLocks()
	sink := notify.NewSink(clk)

	noteSvc := notes.NewService(store)
	noteHandler := notes.NewHandler(noteSvc, logger)

	reminderSvc := reminders.NewService(store, locks, clk)
	reminderHandler := reminders.NewHandler(reminderSvc, logger)

	evaluator := reminders.NewEvaluator(store, sink, locks, clk, logger)
	scheduler := reminders.NewScheduler(evaluator, cfg.ScanInterval, logger)

	notifyHandler := notify.NewHandler(sink, scheduler, noteSvc.RenderMarkdown, logger)

	authn := auth.NewAuthenticator([]byte(cfg.JWTSecret))

	// Create MCP server
	mcpSrv := mcpserver.NewServer(mcpserver.Deps{
		Notes:     noteSvc,
		Reminders: reminderSvc,
		Sink:      sink,
	})

	// HTTP router
	mux := http.NewServeMux()

	// Static files
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		log.Fatalf("failed to get static fs: %v", err)
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(sub))))

	// Notes
	mux.Handle("POST /api/notes", authn.Wrap(noteHandler.CreateNote))
	mux.Handle("GET /api/notes", authn.Wrap(noteHandler.ListNotes))
	mux.Handle("GET /api/notes/search", authn.Wrap(noteHandler.SearchNotes))
	mux.Handle("GET /api/notes/{id}", authn.Wrap(noteHandler.GetNote))
	mux.Handle("DELETE /api/notes/{id}", authn.Wrap(noteHandler.DeleteNote))

	// Reminders
	mux.Handle("PUT /api/notes/{id}/reminder", authn.Wrap(reminderHandler.SetReminder))
	mux.Handle("DELETE /api/notes/{id}/reminder", authn.Wrap(reminderHandler.RemoveReminder))
	mux.Handle("POST /api/notes/{id}/reminder/acknowledge", authn.Wrap(reminderHandler.Acknowledge))
	mux.Handle("POST /api/notes/{id}/reminder/snooze", authn.Wrap(reminderHandler.Snooze))
	mux.Handle("GET /api/reminders/upcoming", authn.Wrap(reminderHandler.Upcoming))
	mux.Handle("GET /api/reminders/overdue", authn.Wrap(reminderHandler.Overdue))

	// Notifications
	mux.Handle("GET /api/notifications", authn.Wrap(notifyHandler.List))
	mux.Handle("PUT /api/notifications/{id}/read", authn.Wrap(notifyHandler.MarkRead))
	mux.Handle("POST /api/notifications/check", authn.Wrap(notifyHandler.Check))
	mux.Handle("DELETE /api/notifications", authn.Wrap(notifyHandler.Clear))
	mux.Handle("POST /api/notifications/test", authn.Wrap(notifyHandler.AddTest))
	mux.Handle("GET /fragments/notifications", authn.Wrap(notifyHandler.Fragment))

	// MCP endpoint (HTTP transport)
	// MCP uses POST for requests and GET for SSE streams
	mcpHTTP := mcpserver.NewHTTPHandler(mcpSrv, authn)
	mux.Handle("POST /mcp", mcpHTTP)
	mux.Handle("GET /mcp", mcpHTTP)
	mux.Handle("DELETE /mcp", mcpHTTP)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Reminder scheduler
	scheduler.Start(context.Background())
	defer scheduler.Stop()

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down server...")
		scheduler.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}()

	logger.Info("server starting", "port", cfg.Port, "store", cfg.Store)
	logger.Info("endpoints available",
		"api", "http://localhost:"+cfg.Port+"/api",
		"mcp", "http://localhost:"+cfg.Port+"/mcp",
	)

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}

	logger.Info("server stopped")
}
