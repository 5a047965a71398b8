package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Jordancode-cyber/EV-test-app/audit"
	"github.com/Jordancode-cyber/EV-test-app/auth"
	"github.com/Jordancode-cyber/EV-test-app/cliparse"
	"github.com/Jordancode-cyber/EV-test-app/db"
	"github.com/Jordancode-cyber/EV-test-app/middleware"
	"github.com/Jordancode-cyber/EV-test-app/notify"
	"github.com/Jordancode-cyber/EV-test-app/router"
	"github.com/Jordancode-cyber/EV-test-app/store"
	"github.com/Jordancode-cyber/EV-test-app/throttle"
	"github.com/Jordancode-cyber/EV-test-app/voting"
)

func main() {
	// A missing .env is fine; real deployments set the environment directly
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			slog.Warn("failed to load .env", "error", err)
		}
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	if cfg.LogFormat == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	}

	// Connect to the database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	st := store.New(dbConn)

	if cfg.SeedFile != "" {
		if err := seed(st, cfg.SeedFile); err != nil {
			slog.Error("seeding failed", "file", cfg.SeedFile, "error", err)
			os.Exit(1)
		}
	}

	hasher, err := auth.NewHasher(cfg.HashSecret)
	if err != nil {
		slog.Error("hasher setup failed", "error", err)
		os.Exit(1)
	}

	notifier, closeNotifier, err := notify.Open(cfg.Notifier, cfg.NotifyFile, os.Stdout)
	if err != nil {
		slog.Error("notifier setup failed", "error", err)
		os.Exit(1)
	}
	defer closeNotifier()
	if cfg.Notifier == cliparse.NotifierConsole {
		slog.Warn("console notifier prints verification codes to stdout; use only in development")
	}

	recorder := audit.NewRecorder(st, cfg.AuditBuffer, cfg.OpTimeout)
	defer recorder.Close()

	svc, err := voting.NewService(voting.Config{
		CodeTTL:         cfg.CodeTTL,
		BallotTTL:       cfg.BallotTTL,
		MaxCodeAttempts: cfg.MaxCodeAttempts,
		OpTimeout:       cfg.OpTimeout,
	}, voting.Deps{
		Store:    st,
		Catalog:  st,
		Hasher:   hasher,
		Notifier: notifier,
		Throttle: throttle.New(st, cfg.ChallengeLimit, cfg.ChallengeWindow),
		Audit:    recorder,
	})
	if err != nil {
		slog.Error("service setup failed", "error", err)
		os.Exit(1)
	}

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(router.NewRouter(svc)),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		slog.Error("listen failed", "addr", server.Addr, "error", err)
		os.Exit(1)
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)

	slog.Info("Listening", "port", cfg.Port)
	if err := serve(&server, ln, ctrlc, 2*cfg.OpTimeout); err != nil {
		slog.Error("Server closed", "error", err)
		return
	}
	slog.Info("Server closed")
}

// serve runs srv on ln until stop fires, then shuts it down gracefully.
// ListenAndServe-style calls return as soon as Shutdown begins, so serve
// also waits for the drain; the audit recorder and database are closed by
// the caller and must outlive in-flight requests.
func serve(srv *http.Server, ln net.Listener, stop <-chan os.Signal, grace time.Duration) error {
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-stop
		ctx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Warn("graceful shutdown failed", "error", err)
			srv.Close()
		}
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-drained
	return nil
}

func seed(st *store.Store, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	data, err := st.Seed(ctx, f)
	if err != nil {
		return err
	}
	slog.Info("Seed data loaded",
		"voters", len(data.Voters),
		"positions", len(data.Positions),
		"candidates", len(data.Candidates),
	)
	return nil
}
