package main // Entry point for the central auth service

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/roamnest/roamnest-backend/internal/config"
	"github.com/roamnest/roamnest-backend/internal/database"
	"github.com/roamnest/roamnest-backend/internal/handler"
	"github.com/roamnest/roamnest-backend/internal/middleware"
	"github.com/roamnest/roamnest-backend/internal/queue"
	"github.com/roamnest/roamnest-backend/internal/repository"
	"github.com/roamnest/roamnest-backend/internal/router"
	"github.com/roamnest/roamnest-backend/internal/utils"
)

func main() {
	// .env is a development convenience; in deployment the variables come
	// from the environment and the file is absent.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	box, err := utils.NewFieldBox(cfg.FieldEncKey)
	if err != nil {
		log.Fatalf("field encryption: %v", err)
	}

	accounts := repository.NewAccountRepo(db)
	tokens := repository.NewTokenRepo(db)
	roles := repository.NewRoleRepo(db)
	profiles := repository.NewProfileRepo(db, box)

	// Built-in roles and their default permission sets must exist before
	// the first registration assigns one.
	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := roles.Seed(seedCtx); err != nil {
		log.Fatalf("seed roles: %v", err)
	}
	cancel()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting disabled, verification codes will fail")
	}
	codes := repository.NewCodeRepo(rdb, time.Duration(cfg.VerifyTTLMin)*time.Minute)
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	events := queue.Broker{}

	authH := handler.NewAuthHandler(cfg, accounts, tokens, roles, codes, events)
	profileH := handler.NewProfileHandler(profiles, roles)
	roleH := handler.NewRoleHandler(roles)
	verifyH := handler.NewVerifyHandler(cfg, accounts, codes, events)

	// Local stacks can drain the notification queue into a log file
	// instead of a real delivery provider.
	if os.Getenv("NOTIFY_CONSUMER") == "local" {
		go func() {
			if err := queue.StartNotifyConsumer(); err != nil {
				log.Printf("notify consumer stopped: %v", err)
			}
		}()
	}

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, profileH, roleH, verifyH, limiter)

	addr := ":" + cfg.Port
	log.Printf("authd listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
