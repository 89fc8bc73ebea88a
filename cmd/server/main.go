package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/hall-scheme-editor/internal/config"
	"github.com/iliyamo/hall-scheme-editor/internal/database"
	"github.com/iliyamo/hall-scheme-editor/internal/handler"
	"github.com/iliyamo/hall-scheme-editor/internal/middleware"
	"github.com/iliyamo/hall-scheme-editor/internal/queue"
	"github.com/iliyamo/hall-scheme-editor/internal/repository"
	"github.com/iliyamo/hall-scheme-editor/internal/router"
	"github.com/iliyamo/hall-scheme-editor/internal/scheme"
	queue_publisher "github.com/iliyamo/hall-scheme-editor/internal/service"
	"github.com/iliyamo/hall-scheme-editor/internal/session"
)

func main() {
	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DB)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions := session.NewStore(scheme.Limits{MaxRows: cfg.Scheme.MaxRows, MaxCols: cfg.Scheme.MaxCols}, cfg.Scheme.SessionTTL)
	go sweepSessions(ctx, sessions, cfg.Scheme.SessionTTL)

	go func() {
		if err := queue.StartSchemeConsumer(ctx, cfg.AMQPURL, "logs"); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("scheme-consumer stopped: %v", err)
		}
	}()

	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	hallRepo := repository.NewHallRepo(db)
	halls := handler.NewHallHandler(hallRepo, cache)
	schemes := handler.NewSchemeHandler(hallRepo, sessions, queue_publisher.New(cfg.AMQPURL), cache)

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg), cfg.JWTSecret)
	router.RegisterAdmin(e, halls, schemes, cfg.JWTSecret, middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	router.RegisterPublic(e, schemes, cache.Middleware())

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// sweepSessions drops idle editor sessions until ctx is done.
func sweepSessions(ctx context.Context, st *session.Store, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	t := time.NewTicker(ttl / 2)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := st.Sweep(); n > 0 {
				log.Printf("expired %d editor sessions", n)
			}
		}
	}
}
