package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/andikasp/desa-wisata-api/internal/asset"
	"github.com/andikasp/desa-wisata-api/internal/config"
	"github.com/andikasp/desa-wisata-api/internal/database"
	"github.com/andikasp/desa-wisata-api/internal/handler"
	"github.com/andikasp/desa-wisata-api/internal/queue"
	"github.com/andikasp/desa-wisata-api/internal/repository"
	"github.com/andikasp/desa-wisata-api/internal/router"
	"github.com/andikasp/desa-wisata-api/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env wins
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil disables cache and rate limiting
	if rdb == nil {
		log.Printf("redis unavailable; cache and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	itemsRepo := repository.NewItemRepo(db)
	assets := asset.NewStore(cfg.UploadDir)

	authHandler := handler.NewAuthHandler(cfg, users)
	itemHandler := handler.NewItemHandler(itemsRepo, assets, service.NewPublisher())

	// Audit consumer runs for the life of the process, reconnecting as needed.
	go queue.StartContentConsumer()

	e := echo.New()
	router.Register(e, cfg, authHandler, itemHandler, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
