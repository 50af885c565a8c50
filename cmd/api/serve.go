package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"skincarechat/internal/ai"
	"skincarechat/internal/catalog"
	"skincarechat/internal/chat"
	"skincarechat/internal/config"
	"skincarechat/internal/logging"
	"skincarechat/internal/server"
	"skincarechat/internal/store"
)

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if cfg.AppEnv != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	products, err := catalog.Open(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	st, err := store.Open(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer st.Close()

	client := ai.New(cfg, log)
	svc := chat.New(chat.Deps{
		Store:        st,
		Catalog:      products,
		AI:           client,
		HistoryLimit: cfg.ChatHistoryLimit,
		Logger:       log,
	})
	app := server.New(cfg, svc, client, log)
	httpServer := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", "http://localhost:"+cfg.AppPort).
			Str("ai_provider", cfg.AIProvider).
			Int("products", products.Len()).
			Msg("skincare chat api listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)
	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-stop:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	return nil
}
