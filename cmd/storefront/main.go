// Command storefront is the writer context: catalog, cart and login. Every
// cart change is published to the shared channel for the checkout process.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/backend"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/cartstore"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/channel"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/config"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/events"
	h "github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/http"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/service"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/session"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/pkg/logger"
)

func main() {
	cfg, err := config.Load(".env", "8080")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(logger.Options{Service: "storefront", Env: cfg.Env, Level: cfg.LogLevel})

	if err := run(cfg, log); err != nil {
		log.Error("storefront stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shared, closeChannel, err := channel.Open(ctx, cfg.Channel)
	if err != nil {
		return err
	}
	defer closeChannel()

	store := cartstore.New(shared, cartstore.WithKey(cfg.CartKey), cartstore.WithLogger(log))
	defer store.Close()

	sess := session.New(shared, cfg.AuthKey)
	sess.Restore(ctx)

	api := backend.New(cfg.Backend)
	cart := service.NewCartService(api, store, sess)
	catalog := service.NewCatalogService(api)
	auth := service.NewAuthService(api, sess, cart)
	admin := service.NewAdminService(api, sess)

	if _, err := sess.Token(); err == nil {
		if _, err := cart.Load(ctx); err != nil {
			log.Warn("initial cart load failed", "error", err)
		}
	}

	handler := h.NewStorefrontHandler(cart, catalog, auth, admin, cfg.RequestTimeout)
	srv := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: h.NewStorefrontRouter(handler, h.RouterOptions{
			Service:            "storefront",
			RequestTimeout:     cfg.RequestTimeout,
			MaxRequestBodySize: cfg.MaxRequestBodySize,
			Logger:             log,
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("storefront starting", "port", cfg.HTTPPort, "channel", cfg.Channel.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if cfg.KafkaEnabled() {
		poller := events.NewPoller(cart, sess, cfg.KafkaGroupID, cfg.KafkaBrokers...)
		defer poller.Close()
		g.Go(func() error {
			return poller.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
