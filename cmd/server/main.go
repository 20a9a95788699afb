package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/spieltreff/backend/internal/auth"
	"github.com/spieltreff/backend/internal/bgg"
	"github.com/spieltreff/backend/internal/config"
	"github.com/spieltreff/backend/internal/database"
	"github.com/spieltreff/backend/internal/handler"
	"github.com/spieltreff/backend/internal/queue"
	"github.com/spieltreff/backend/internal/repository"
	"github.com/spieltreff/backend/internal/router"
)

func main() {
	// .env is a development convenience; in production the variables
	// come from the environment and the file is absent.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, response cache disabled")
	}

	accounts := repository.NewAccountRepo(db)
	sessions := auth.NewSessionService(cfg.JWTSecret, repository.NewSessionRepo(db))
	eventTokens := auth.NewEventTokenService(cfg.JWTSecret, cfg.EventTokenTTL)

	bggClient := bgg.NewClient(cfg.BGGBaseURL)
	images := bgg.NewImageService(bggClient, cfg.ImageDir, cfg.ImageRetryAfter)

	events := repository.NewEventRepo(db)
	games := repository.NewGameRepo(db)

	go func() {
		if err := queue.StartActivityConsumer(); err != nil {
			log.Printf("activity-consumer: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	router.Register(e, router.Deps{
		Auth:     handler.NewAuthHandler(cfg, accounts, sessions),
		Admin:    handler.NewAdminHandler(cfg, accounts, sessions),
		Events:   handler.NewEventHandler(events, eventTokens),
		Games:    handler.NewGameHandler(events, games),
		BGG:      handler.NewBGGHandler(bggClient, images),
		Sessions: sessions,
		Accounts: accounts,
		Tokens:   eventTokens,
		Cache:    config.LoadCacheConfig(),
		Redis:    rdb,
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
