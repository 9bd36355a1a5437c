package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/brandonr49/board-game-engine/internal/auth"
	"github.com/brandonr49/board-game-engine/internal/config"
	"github.com/brandonr49/board-game-engine/internal/handler"
	"github.com/brandonr49/board-game-engine/internal/logger"
	"github.com/brandonr49/board-game-engine/internal/middleware"
	"github.com/brandonr49/board-game-engine/internal/repository/postgres"
	redisrepo "github.com/brandonr49/board-game-engine/internal/repository/redis"
	"github.com/brandonr49/board-game-engine/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Config load failed")
	}
	logger.Init(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile, Dev: cfg.Dev})
	log.Info().Str("port", cfg.Port).Str("botDifficulty", cfg.BotDifficulty).Bool("dev", cfg.Dev).Msg("Config loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Database connection failed")
	}
	defer db.Close()

	// Redis
	redisClient, err := redisrepo.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Redis connection failed")
	}
	defer redisClient.Close()

	// Repos
	userRepo := postgres.NewUserRepo(db)
	matchRepo := postgres.NewMatchRepo(db)

	jwtMgr := auth.NewJWTManager(cfg.JWTSecret)
	wsHub := handler.NewHub()

	matchSvc := service.NewMatchService(matchRepo, userRepo, redisClient, wsHub, service.MatchOptions{
		StateTTL:      cfg.MatchStateTTL,
		BotDifficulty: cfg.BotDifficulty,
	})

	// Handlers
	authHandler := handler.NewAuthHandler(jwtMgr, userRepo, cfg.Dev)
	matchHandler := handler.NewMatchHandler(matchSvc)
	wsHandler := handler.NewWSHandler(wsHub, jwtMgr, matchSvc.CheckSeat)

	// Router
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.CORS("*"))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// WebSocket authenticates itself from ?token= or the header.
		r.Get("/ws", wsHandler.ServeWS)

		r.Group(func(r chi.Router) {
			r.Use(middleware.JSON)
			r.Post("/auth/dev-login", authHandler.DevLogin)
			r.Post("/auth/refresh", authHandler.RefreshToken)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.JSON)
			r.Use(auth.Middleware(jwtMgr))
			r.Get("/users/me", authHandler.Me)
			matchHandler.Routes(r)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Rehydrate Redis from Postgres after a restart.
	if err := matchSvc.RecoverActiveMatches(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to recover active matches (non-fatal)")
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Server stopped")
}
