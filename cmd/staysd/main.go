package main // Entry point for the downstream stays service

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
	// The stays service holds the shared verification secret and its own
	// database.  It has no credential store and no login endpoint: every
	// identity it acts on was verified at the gateway middleware.
	cfg := config.LoadGateway()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	stays := handler.NewStayHandler(repository.NewStayRepo(db))

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterStays(e, stays, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("staysd listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
