package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/qrpage/internal/config"
	"github.com/Vovarama1992/qrpage/internal/delivery"
	"github.com/Vovarama1992/qrpage/internal/delivery/telegram"
	ws "github.com/Vovarama1992/qrpage/internal/delivery/ws"
	"github.com/Vovarama1992/qrpage/internal/domain"
	"github.com/Vovarama1992/qrpage/internal/domain/stations"
	"github.com/Vovarama1992/qrpage/internal/infra"
	"github.com/Vovarama1992/qrpage/internal/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

func main() {

	// ENV
	cfg, err := config.Load()
	if err != nil {
		panic("config: " + err.Error())
	}

	// LOGGER
	zl, syncLog, err := observability.NewLogger(cfg.BotDebug)
	if err != nil {
		panic("logger: " + err.Error())
	}
	defer syncLog()

	if err := run(cfg, zl); err != nil {
		zl.Log(logger.LogEntry{
			Level:   "error",
			Message: "service stopped with error",
			Error:   err,
		})
		syncLog()
		os.Exit(1)
	}
}

func run(cfg config.Config, zl *logger.ZapLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// POSTGRES
	pool, err := infra.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	pageRepo := infra.NewPostgresPageRepo(pool)
	if err := pageRepo.EnsureSchema(ctx); err != nil {
		return err
	}

	// MEDIA
	mediaStore, err := infra.NewFilesystemMediaStore(cfg.MediaDir)
	if err != nil {
		return err
	}

	// METRICS
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		return err
	}

	// TELEGRAM
	botAPI, err := infra.NewTelegramBot(cfg.BotToken, cfg.BotDebug)
	if err != nil {
		return err
	}

	// STATIONS
	s1 := stations.NewS1ResolveFile(infra.NewTelegramFileResolver(botAPI), zl)
	s2 := stations.NewS2Download(cfg.DownloadTimeout, cfg.MaxMediaBytes, zl)

	// PAGE SERVICE (оркестратор)
	pageService := domain.NewPageService(pageRepo, mediaStore, s1, s2, metrics, zl)

	sessions := domain.NewSessionStore(cfg.SessionTTL)
	bot := telegram.NewBot(
		botAPI,
		pageService,
		sessions,
		domain.NewAllowList(cfg.AdminIDs),
		infra.NewQREncoder(),
		cfg.QRCaption,
		cfg.PageURL,
		metrics,
		zl,
	)

	// WS HUB
	hub := ws.NewHub(zl)

	// ROUTER
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "X-Auth"},
		AllowCredentials: false,
	}))

	delivery.RegisterRoutes(
		r,
		delivery.NewPageHandler(pageService, metrics, zl),
		delivery.NewMediaHandler(mediaStore, zl),
		metrics.Handler(),
		cfg.MetricsToken,
	)
	r.Get("/ws", ws.WSHandler(hub, zl))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	// BROADCAST LISTENER
	g.Go(func() error {
		type wsEvent struct {
			Type   string `json:"type"`
			PageID string `json:"pageId"`
		}

		for {
			select {
			case <-gctx.Done():
				return nil
			case ev := <-pageService.Events():
				payload, err := json.Marshal(wsEvent{Type: ev.Kind, PageID: ev.PageID})
				if err != nil {
					continue
				}
				hub.SendToRoom(ev.PageID, payload)
			}
		}
	})

	g.Go(func() error {
		sessions.RunJanitor(gctx, time.Minute)
		return nil
	})

	g.Go(func() error {
		return bot.Run(gctx)
	})

	g.Go(func() error {
		zl.Log(logger.LogEntry{
			Level:   "info",
			Message: "server started",
			Fields:  map[string]any{"port": cfg.Port, "baseURL": cfg.BaseURL},
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "server stopped",
	})
	return err
}
