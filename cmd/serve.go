package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/parisxmas/OxiDB/qrform/internal/auth"
	"github.com/parisxmas/OxiDB/qrform/internal/config"
	"github.com/parisxmas/OxiDB/qrform/internal/db"
	"github.com/parisxmas/OxiDB/qrform/internal/gelf"
	"github.com/parisxmas/OxiDB/qrform/internal/handler"
	"github.com/parisxmas/OxiDB/qrform/internal/qrcode"
	"github.com/parisxmas/OxiDB/qrform/internal/repository"
	"github.com/parisxmas/OxiDB/qrform/internal/router"
	"github.com/parisxmas/OxiDB/qrform/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	// GELF UDP logging
	if cfg.GelfAddr != "" {
		gelfWriter, err := gelf.New(cfg.GelfAddr, "qrform")
		if err != nil {
			log.Printf("Warning: GELF init failed: %v", err)
		} else {
			defer gelfWriter.Close()
			log.SetOutput(io.MultiWriter(os.Stderr, gelfWriter))
			log.Printf("GELF logging: enabled (%s)", cfg.GelfAddr)
		}
	}
	for _, w := range cfg.Warnings() {
		log.Printf("Warning: %s; override it outside local development", w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, checks, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	admin, err := cfg.AdminIdentity()
	if err != nil {
		return err
	}
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)

	// Services
	authSvc := service.NewAuthService(auth.NewVerifier(admin), tokens)
	subSvc := service.NewSubmissionService(store)
	qrSvc := service.NewQRCodeService(qrcode.NewEncoder(), qrOptions(cfg), cfg.BaseURL)

	// Handlers
	h := router.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Submission: handler.NewSubmissionHandler(subSvc),
		QRCode:     handler.NewQRCodeHandler(qrSvc),
		Health:     handler.NewHealthHandler(append([]handler.HealthCheck{subSvc.Health}, checks...)...),
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.New(tokens, h, cfg.StaticDir),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("qrform server running on %s (store: %s)", cfg.BaseURL, cfg.StoreBackend)
		log.Printf("Form: %s", qrSvc.FormURL())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("shutting down …")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// openStore builds the configured backend. The returned checks feed the
// health endpoint and the func releases connections.
func openStore(ctx context.Context, cfg *config.Config) (repository.SubmissionStore, []handler.HealthCheck, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendOxiDB:
		pool, err := db.NewPool(cfg.OxiDBHost, cfg.OxiDBPort, cfg.PoolSize)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect to OxiDB: %w", err)
		}
		log.Printf("Connected to OxiDB at %s:%d (pool size: %d)", cfg.OxiDBHost, cfg.OxiDBPort, cfg.PoolSize)
		repo := repository.NewOxiSubmissionRepo(pool)
		if err := repo.EnsureIndexes(); err != nil {
			log.Printf("Warning: submission index creation failed: %v", err)
		}
		return repo, []handler.HealthCheck{pool.Ping}, pool.Close, nil

	case config.BackendPostgres:
		connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		pool, err := pgxpool.New(connectCtx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("pgxpool.New: %w", err)
		}
		repo := repository.NewPostgresSubmissionRepo(pool)
		if err := repo.EnsureSchema(connectCtx); err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("create schema: %w", err)
		}
		ping := func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Ping(pingCtx)
		}
		return repo, []handler.HealthCheck{ping}, pool.Close, nil

	default:
		repo, err := repository.NewFileSubmissionRepo(cfg.DataFile)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open submissions file: %w", err)
		}
		log.Printf("Storing submissions in %s", repo.Path())
		return repo, nil, func() {}, nil
	}
}

func qrOptions(cfg *config.Config) qrcode.Options {
	return qrcode.Options{
		Size:   cfg.QRSize,
		Margin: cfg.QRMargin,
		Dark:   cfg.QRDark,
		Light:  cfg.QRLight,
	}
}
