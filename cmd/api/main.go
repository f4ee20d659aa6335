package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tunenote/internal/config"
	"tunenote/internal/db"
	apihttp "tunenote/internal/http"
	"tunenote/internal/repository"
	"tunenote/internal/service"
	"tunenote/internal/spotify"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if err := db.RunMigrations(ctx, cfg); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	noteRepo := repository.NewPgNoteRepository(pool)

	var stateStore service.OAuthStateStore
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			stateStore = service.NewRedisOAuthStateStore(redisClient)
		}
		cancel()
	}

	sessionSvc := service.NewSessionService(cfg.SessionSecret, time.Duration(cfg.SessionTTLHours)*time.Hour)
	userSvc := service.NewUserService(logger, userRepo)

	callbackURL := cfg.CallbackBaseURL + "/users/spotify-auth-callback"
	spotifyClient := spotify.NewHTTPClient(
		cfg.SpotifyAccountsURL,
		cfg.SpotifyAPIURL,
		cfg.SpotifyClientID,
		cfg.SpotifyClientSecret,
		callbackURL,
		logger,
	)
	spotifySvc := service.NewSpotifyService(logger, userRepo, spotifyClient, stateStore)

	userHandler := apihttp.NewUserHandler(logger, userSvc, sessionSvc)
	spotifyHandler := apihttp.NewSpotifyHandler(logger, spotifySvc, cfg.AppHomeURL)
	noteHandler := apihttp.NewNoteHandler(logger, noteRepo)
	router := apihttp.NewRouter(logger, sessionSvc, userHandler, spotifyHandler, noteHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
