package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/danielhkuo/quickly-rsvp/auth"
	"github.com/danielhkuo/quickly-rsvp/cliparse"
	"github.com/danielhkuo/quickly-rsvp/db"
	"github.com/danielhkuo/quickly-rsvp/handlers"
	"github.com/danielhkuo/quickly-rsvp/middleware"
	"github.com/danielhkuo/quickly-rsvp/router"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Open the session database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	session := auth.NewSQLProvider(dbConn)
	app := handlers.NewApp(cfg, session)

	// A resumed session starts with the invitations printed to the terminal
	if s, ok := session.Get(); ok {
		slog.Info("resuming session", "user_id", s.User.ID, "token", auth.Fingerprint(s.Token, cfg.SessionSalt))
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout+5*time.Second)
		if err := app.PrintInvitations(ctx, os.Stdout); err != nil {
			slog.Warn("could not load invitations", "error", err)
		}
		cancel()
	}

	// Pending invitation count for the notification badge
	pending, stopPending := app.Store.Subscribe()
	defer stopPending()
	go func() {
		for n := range pending {
			slog.Info("pending invitations", "count", n)
		}
	}()

	// Create router
	mux := router.NewRouter(app)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		// Wait for Ctrl-C signal
		<-ctrlc
		// Let in-flight votes settle before exiting
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout+5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Warn("shutdown deadline passed", "error", err)
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "api", cfg.APIURL)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
		return
	}
	// ListenAndServe returns as soon as Shutdown starts
	<-drained
	slog.Info("Server closed")
}
