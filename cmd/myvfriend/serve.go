package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpadapter "github.com/PabloGalante/myvfriend/internal/adapters/http"
	"github.com/PabloGalante/myvfriend/internal/adapters/line"
	"github.com/PabloGalante/myvfriend/internal/app/conversation"
	"github.com/PabloGalante/myvfriend/internal/app/delivery"
	"github.com/PabloGalante/myvfriend/internal/app/history"
	"github.com/PabloGalante/myvfriend/internal/config"
	"github.com/PabloGalante/myvfriend/internal/domain"
	"github.com/PabloGalante/myvfriend/internal/observability"
)

const shutdownGrace = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the LINE webhook server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, cfg)
	},
}

func runServe(ctx context.Context, cfg *config.Config) error {
	log := observability.Logger()

	llmClient, err := newLLM(ctx, cfg.LLM)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warnw("closing store", "error", err)
		}
	}()

	mode, err := line.ParseDeliveryMode(cfg.Line.DeliveryMode)
	if err != nil {
		return err
	}

	var sender domain.Sender = line.NewClient(cfg.Line.APIBaseURL, cfg.Line.ChannelAccessToken)
	if cfg.Line.ChannelAccessToken == "" {
		log.Warnw("LINE_CHANNEL_ACCESS_TOKEN not set, replies are only logged")
		sender = logSender{}
	}

	svc := conversation.NewService(llmClient, store, delivery.NewDeliverer(sender))
	handler := httpadapter.NewServer(
		svc,
		history.NewService(store),
		line.NewWebhook(cfg.Line.ChannelSecret, mode),
		httpadapter.Options{
			AdminToken:          cfg.HTTP.AdminToken,
			MaxConcurrentEvents: cfg.HTTP.MaxConcurrentEvents,
			WebhookRPS:          cfg.HTTP.WebhookRPS,
			WebhookBurst:        cfg.HTTP.WebhookBurst,
		},
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Generation plus three delivery attempts must fit.
		WriteTimeout: 2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("myvfriend listening", "addr", srv.Addr, "mode", cfg.Mode, "delivery_mode", mode)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// logSender stands in for the LINE client when no access token is set.
type logSender struct{}

func (logSender) Send(ctx context.Context, dest domain.Destination, text string) error {
	observability.LoggerFromContext(ctx).Infow("reply (not sent)",
		"destination_kind", dest.Kind.String(),
		"text", text,
	)
	return nil
}
