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

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-coinova/internal/config"
	"github.com/ovaphlow/pitchfork/service-coinova/internal/contact"
	contactrepo "github.com/ovaphlow/pitchfork/service-coinova/internal/contact/repo"
	"github.com/ovaphlow/pitchfork/service-coinova/internal/notify"
	"github.com/ovaphlow/pitchfork/service-coinova/internal/ratelimit"
	"github.com/ovaphlow/pitchfork/service-coinova/internal/router"
	"github.com/ovaphlow/pitchfork/service-coinova/internal/subscriber"
	subscriberrepo "github.com/ovaphlow/pitchfork/service-coinova/internal/subscriber/repo"
	"github.com/ovaphlow/pitchfork/service-coinova/pkg/database"
	"github.com/ovaphlow/pitchfork/service-coinova/pkg/mailer"
	"github.com/ovaphlow/pitchfork/service-coinova/pkg/utilities"
)

func main() {
	// best effort: without a .env file the real environment is used
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	lg, err := utilities.Init(cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Infow("starting service-coinova", "port", cfg.Port, "mail_transport", cfg.MailTransport)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	subRepo := subscriberrepo.NewSubscriberRepo(db)
	if err := subRepo.EnsureTable(ctx); err != nil {
		sugar.Fatalf("ensure subscribers table: %v", err)
	}
	contactRepo := contactrepo.NewContactRepo(db)
	if err := contactRepo.EnsureTable(ctx); err != nil {
		sugar.Fatalf("ensure contact_messages table: %v", err)
	}

	sender, err := newSender(cfg, sugar)
	if err != nil {
		sugar.Fatalf("mail sender: %v", err)
	}
	notifier, err := notify.New(sender, cfg.Notify)
	if err != nil {
		sugar.Fatalf("notifier: %v", err)
	}

	limiter, rdb := newLimiter(ctx, cfg, sugar)
	if rdb != nil {
		defer rdb.Close()
	}

	handler := router.RegisterRoutes(sugar, router.Deps{
		Subscribers:    subscriber.NewHandler(subscriber.NewService(subRepo, notifier, sugar), sugar),
		Contact:        contact.NewHandler(contact.NewService(contactRepo, notifier, sugar), sugar),
		Limiter:        limiter,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		TrustProxy:     cfg.TrustProxy,
	})
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sugar.Infow("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()

	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}

func newSender(cfg *config.Config, logger *zap.SugaredLogger) (mailer.Sender, error) {
	if cfg.MailTransport == config.TransportLog {
		logger.Warn("MAIL_TRANSPORT=log: emails are logged, not delivered")
		return mailer.NewLogSender(logger), nil
	}
	return mailer.NewSMTPSender(cfg.SMTP)
}

// newLimiter returns nil values when REDIS_URL is unset or unusable; the
// form routes then run unthrottled.
func newLimiter(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (*ratelimit.Limiter, *redis.Client) {
	if cfg.RedisURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Warnw("invalid REDIS_URL, rate limiting disabled", "err", err)
		return nil, nil
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		// the limiter fails open, so keep it and let it recover when redis does
		logger.Warnw("redis ping failed", "err", err)
	}
	return ratelimit.NewLimiter(client, logger, cfg.RateLimitPerMinute, time.Minute), client
}
