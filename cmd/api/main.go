package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/ramgerassy/ace-ai-sub000/internal/cache"
	"github.com/ramgerassy/ace-ai-sub000/internal/config"
	"github.com/ramgerassy/ace-ai-sub000/internal/db"
	"github.com/ramgerassy/ace-ai-sub000/internal/middleware"
	"github.com/ramgerassy/ace-ai-sub000/internal/quiz"
	"github.com/ramgerassy/ace-ai-sub000/internal/telemetry"
	"github.com/ramgerassy/ace-ai-sub000/internal/ws"
)

func main() {
	doMigrate := flag.Bool("migrate", false, "run migrations and exit")
	flag.Parse()

	cfg := config.Load()
	sqlxDB := db.MustConnect(cfg.DBDSN)
	rdb := cache.MustConnect(cfg.RedisAddr, cfg.RedisDB)

	tlog := telemetry.Init(telemetry.FromEnv(config.GetEnv))
	tlog.Info().Str("port", cfg.AppPort).Msg("booting ace-ai api")

	if *doMigrate {
		db.MustMigrate(sqlxDB)
		log.Println("migrations done")
		return
	}

	app := fiber.New()

	app.Use(middleware.RequestID())
	app.Use(middleware.Recover())
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.RequestLog())
	app.Use(middleware.RateLimiter())
	app.Use(middleware.SecureHeaders())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/readyz", readiness(sqlxDB, rdb))

	qh := quiz.NewHandler(cfg, sqlxDB, rdb)
	api := app.Group("/api/v1")
	api.Post("/quiz/generate", qh.Generate)
	api.Get("/quizzes", qh.ListQuizzes)
	api.Get("/quizzes/:id", qh.GetQuiz)

	app.Get("/ws", middleware.RequireWebSocket(), websocket.New(ws.HandleWS))

	log.Fatal(app.Listen(":" + cfg.AppPort))
}

// readiness pings the stores concurrently; either one down means not ready.
func readiness(sqlxDB *sqlx.DB, rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return sqlxDB.PingContext(gctx) })
		g.Go(func() error { return rdb.Ping(gctx).Err() })

		if err := g.Wait(); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ready"})
	}
}
