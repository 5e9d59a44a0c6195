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

	"signage-panel/config"
	"signage-panel/database"
	authapi "signage-panel/internal/api/auth"
	campaignsapi "signage-panel/internal/api/campaigns"
	groupsapi "signage-panel/internal/api/groups"
	playerapi "signage-panel/internal/api/player"
	slidesapi "signage-panel/internal/api/slides"
	usersapi "signage-panel/internal/api/users"
	routes "signage-panel/internal/app/http"
	"signage-panel/internal/clock"
	"signage-panel/internal/domain/media"
	"signage-panel/internal/domain/slides"
	"signage-panel/internal/infra/redisbus"
	"signage-panel/internal/infra/storage"
	"signage-panel/internal/logger"
	"signage-panel/internal/playlist"
	"signage-panel/internal/realtime"
	"signage-panel/internal/scheduler"
	"signage-panel/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.LoadEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logg := logger.New(cfg.LogLevel)

	db, err := database.InitDB(cfg, logg)
	if err != nil {
		logg.Error("database init failed", "event", "database_init_failed", "error", err.Error())
		os.Exit(1)
	}
	st := store.New(db, logg)

	files, err := storage.NewLocal(cfg.UploadsDir,
		slides.Folder(slides.TypeImage), slides.Folder(slides.TypeVideo), slides.Folder(slides.TypePDF))
	if err != nil {
		logg.Error("uploads dir init failed", "event", "uploads_init_failed", "error", err.Error())
		os.Exit(1)
	}

	hub := realtime.NewHub(logg)
	var events realtime.Publisher = hub
	var bridge *redisbus.Bridge
	if cfg.RedisURL != "" {
		bridge, err = redisbus.NewFromURL(cfg.RedisURL, redisbus.DefaultChannel, hub, logg)
		if err != nil {
			logg.Error("redis init failed", "event", "redis_init_failed", "error", err.Error())
			os.Exit(1)
		}
		defer bridge.Close()
		events = bridge
	}

	clk := clock.System{}
	cache := scheduler.NewActiveCache()
	reclaimer := media.Reclaimer{Refs: st, Files: files, Logger: logg}
	monitor := scheduler.Monitor{Store: st, Cache: cache, Events: events, Clock: clk, Logger: logg}
	reaper := scheduler.Reaper{
		Store:     st,
		Reclaimer: reclaimer,
		Cache:     cache,
		Events:    events,
		Clock:     clk,
		Grace:     cfg.GracePeriod(),
		Logger:    logg,
	}
	runner := scheduler.NewRunner(logg,
		scheduler.Job{Name: "campaign_transitions", Interval: cfg.CampaignCheckInterval(), Run: monitor.RunOnce},
		scheduler.Job{Name: "expired_campaign_cleanup", Interval: cfg.CleanupInterval(), Run: func(ctx context.Context) error {
			_, err := reaper.RunOnce(ctx)
			return err
		}},
	)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	if cfg.CORSOrigin != "" {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{cfg.CORSOrigin},
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	routes.RegisterRoutes(r, routes.Deps{
		Store:          st,
		Secret:         cfg.JWTSecret,
		UploadsDir:     files.Root(),
		MaxUploadBytes: cfg.MaxUploadBytes(),
		Hub:            hub,
		Auth:           &authapi.Handler{Store: st, Secret: cfg.JWTSecret, Secure: cfg.CookieSecure},
		Users:          &usersapi.Handler{Store: st},
		Groups:         &groupsapi.Handler{Store: st, Files: files, Reclaimer: reclaimer, Events: events},
		Slides:         &slidesapi.Handler{Store: st, Files: files, Reclaimer: reclaimer, Events: events},
		Campaigns:      &campaignsapi.Handler{Store: st, Reclaimer: reclaimer, Events: events, Clock: clk, Location: time.Local},
		Player: &playerapi.Handler{
			Store:           st,
			Composer:        playlist.NewComposer(st, clk),
			RefreshInterval: cfg.PlayerRefreshInterval(),
		},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return runner.Run(gctx) })
	if bridge != nil {
		g.Go(func() error { return bridge.Run(gctx) })
	}
	g.Go(func() error {
		logg.Info("http server listening", "event", "http_listen", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logg.Error("server stopped with error", "event", "server_failed", "error", err.Error())
		os.Exit(1)
	}
	logg.Info("server stopped", "event", "server_stopped")
}
