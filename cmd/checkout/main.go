// Command checkout is the reader context: the payment page. It rebuilds the
// order from the shared channel whenever it becomes active.
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
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/checkout"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/config"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/events"
	h "github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/http"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/session"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/pkg/logger"
)

func main() {
	cfg, err := config.Load(".env", "8081")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(logger.Options{Service: "checkout", Env: cfg.Env, Level: cfg.LogLevel})

	if err := run(cfg, log); err != nil {
		log.Error("checkout stopped", "error", err)
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

	activity := cartstore.NewActivity(cfg.IdleAfter)
	store := cartstore.New(shared,
		cartstore.WithKey(cfg.CartKey),
		cartstore.WithActivity(activity),
		cartstore.WithLogger(log),
	)
	defer store.Close()

	orders := checkout.NewOrderManager(store, session.New(shared, cfg.AuthKey), backend.New(cfg.Backend), cfg.Currency)
	if cfg.KafkaEnabled() {
		pub := events.NewPublisher(cfg.KafkaBrokers...)
		defer pub.Close()
		orders.WithPublisher(pub)
	}
	orders.Start(ctx)
	defer orders.Stop()

	handler := h.NewCheckoutHandler(orders, activity, cfg.RequestTimeout)
	srv := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: h.NewCheckoutRouter(handler, h.RouterOptions{
			Service:            "checkout",
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
		log.Info("checkout starting", "port", cfg.HTTPPort, "channel", cfg.Channel.Driver, "idle_after", cfg.IdleAfter)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
