package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/photorabbit/backend/internal/chainlog"
	"github.com/photorabbit/backend/internal/config"
	"github.com/photorabbit/backend/internal/handler"
	"github.com/photorabbit/backend/internal/service/caption"
	"github.com/photorabbit/backend/internal/service/gateway"
	"github.com/photorabbit/backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := chainlog.Std{}

	st, cleanup, err := openStore(cfg.Store)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer cleanup()

	var gatewaySvc *gateway.Service
	if cfg.AI.Enabled() {
		gatewaySvc, err = gateway.NewService(ctx, cfg.AI, logger)
		if err != nil {
			log.Printf("warning: failed to initialize completion gateway: %v", err)
			log.Println("continuing without the interview completion endpoint")
		} else {
			log.Println("interview completion gateway initialized")
		}
	} else {
		log.Println("ark credentials not configured, skipping the completion gateway")
	}

	var captionSvc *caption.Service
	if cfg.Caption.Enabled() {
		captionSvc = caption.NewService(cfg.Caption, st, logger)
		log.Println("photo captioning service initialized")
	} else {
		log.Println("caption credentials not configured, skipping photo captioning")
	}

	router := handler.NewRouter(handler.Deps{
		Store:       st,
		UpstreamURL: cfg.Interview.UpstreamURL,
		HTTPClient:  &http.Client{},
		GatewaySvc:  gatewaySvc,
		CaptionSvc:  captionSvc,
		Logger:      logger,
	})

	startServer(ctx, cfg.Server, router)
}

func openStore(cfg config.StoreConfig) (store.Store, func(), error) {
	if cfg.DatabasePath == "" {
		log.Println("DATABASE_PATH not set, using the in-memory store")
		return store.NewMemory(), func() {}, nil
	}

	st, err := store.OpenLibSQL(cfg.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("libsql store opened at %s", cfg.DatabasePath)
	return st, func() { _ = st.Close() }, nil
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("PhotoRabbit backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
