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

	"go.uber.org/zap"

	"github.com/ewilliams-labs/popularity/internal/adapters/oauth"
	"github.com/ewilliams-labs/popularity/internal/adapters/rest"
	"github.com/ewilliams-labs/popularity/internal/adapters/spotify"
	"github.com/ewilliams-labs/popularity/internal/adapters/sqlite"
	"github.com/ewilliams-labs/popularity/internal/adapters/tokencache"
	"github.com/ewilliams-labs/popularity/internal/config"
	"github.com/ewilliams-labs/popularity/internal/core/services"
)

func main() {
	// 1. Configuration (Environment Variables)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	defer logger.Sync()

	// 2. Initialize "Driven" Adapters (The Tools)
	// -- Run store
	repo, err := sqlite.NewAdapter(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.String("path", cfg.DatabasePath), zap.Error(err))
	}
	defer repo.Close()

	// -- OAuth session manager backed by the token cache file
	sessions, err := oauth.NewManager(
		cfg.Credentials(),
		tokencache.NewFileStore(cfg.OAuthCachePath),
		oauth.WithLogger(logger.Named("oauth")),
	)
	if err != nil {
		logger.Fatal("failed to initialize oauth", zap.Error(err))
	}

	// -- Spotify Adapter
	policy := spotify.DefaultRetryPolicy()
	policy.MaxServerRetries = cfg.MaxRetries
	policy.InitialBackoff = cfg.RetryBackoff()
	spotifyClient := spotify.NewClient(cfg.SpotifyAPIURL, sessions,
		spotify.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}),
		spotify.WithRetryPolicy(policy),
		spotify.WithArtistMatchThreshold(cfg.ArtistMatchThreshold),
		spotify.WithLogger(logger.Named("spotify")),
	)

	// 3. Initialize Core Logic (The Driver)
	svc := services.NewAnalyzer(sessions, spotifyClient, repo, logger.Named("service"))

	// 4. Initialize "Driving" Adapter (The Interface)
	handler := rest.NewHandler(svc, sessions, logger.Named("rest"))

	// 5. Start the Server
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
	}
	logger.Info("popularity API listening",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("redirect_uri", cfg.RedirectURI),
	)

	serverErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Fatal("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", zap.Error(err))
		}
	}
}
