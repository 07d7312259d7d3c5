package main // Entry point for the downstream vehicles service

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/roamnest/roamnest-backend/internal/config"
	"github.com/roamnest/roamnest-backend/internal/database"
	"github.com/roamnest/roamnest-backend/internal/handler"
	"github.com/roamnest/roamnest-backend/internal/repository"
	"github.com/roamnest/roamnest-backend/internal/router"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.LoadGateway()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	vehicles := handler.NewVehicleHandler(repository.NewVehicleRepo(db))

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterVehicles(e, vehicles, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("carsd listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
