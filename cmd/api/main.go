package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/commission-api/internal/application/chat"
	"github.com/commission-api/internal/application/commission"
	"github.com/commission-api/internal/application/follow"
	"github.com/commission-api/internal/application/guard"
	"github.com/commission-api/internal/application/notification"
	"github.com/commission-api/internal/application/offer"
	"github.com/commission-api/internal/application/search"
	"github.com/commission-api/internal/application/support"
	"github.com/commission-api/internal/application/tag"
	"github.com/commission-api/internal/application/user"
	"github.com/commission-api/internal/config"
	"github.com/commission-api/internal/domain"
	jwtinfra "github.com/commission-api/internal/infrastructure/jwt"
	"github.com/commission-api/internal/infrastructure/redislock"
	"github.com/commission-api/internal/infrastructure/smtp"
	"github.com/commission-api/internal/infrastructure/sns"
	"github.com/commission-api/internal/pkg/keylock"
	"github.com/commission-api/internal/pkg/logger"
	transporthttp "github.com/commission-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	logger.Init(cfg.AppEnv)

	ctx := context.Background()
	st, err := openStores(ctx, cfg)
	if err != nil {
		slog.Error("open storage", "driver", cfg.StorageDriver, "err", err)
		os.Exit(1)
	}

	// JWT provider (optional in development: routes then run without auth).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else if cfg.IsProduction() {
		slog.Error("JWT provider not available", "err", err)
		os.Exit(1)
	} else {
		slog.Warn("JWT provider not available", "err", err)
	}

	var locker keylock.Locker = keylock.NewLocal()
	if cfg.RedisAddr != "" {
		rdb := redislock.NewClient(cfg)
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Error("redis unreachable", "addr", cfg.RedisAddr, "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
		locker = redislock.New(rdb, cfg.LockTTL)
	} else {
		slog.Warn("REDIS_ADDR not set: guard locks only hold within this process")
	}

	// SNS push publisher (optional).
	var publisher notification.Publisher
	if cfg.SNSTopicARN != "" {
		if p, err := sns.NewPublisher(cfg); err == nil {
			publisher = p
		} else {
			slog.Warn("SNS publisher not available", "err", err)
		}
	}

	links := domain.PathLinks{BaseURL: cfg.PublicBaseURL}
	g := guard.New(guard.Deps{
		Offers:      st.offers,
		Commissions: st.commissions,
		Messages:    st.chats,
		Limits:      guard.LimitsFromConfig(cfg.Guard),
	})
	fanout := notification.NewFanout(notification.FanoutDeps{
		Store:     st.notifications,
		Chats:     st.chats,
		Follows:   st.follows,
		Users:     st.users,
		Publisher: publisher,
	})

	deps := &transporthttp.Deps{
		Users: user.NewService(user.ServiceDeps{UserRepo: st.users}),
		Offers: offer.NewService(offer.ServiceDeps{
			OfferRepo:      st.offers,
			CommissionRepo: st.commissions,
			Sequence:       st.sequence,
			Guard:          g,
			Locker:         locker,
			Notifier:       fanout,
		}),
		Commissions: commission.NewService(commission.ServiceDeps{
			CommissionRepo: st.commissions,
			OfferRepo:      st.offers,
			ChatRepo:       st.chats,
			UserRepo:       st.users,
			Sequence:       st.sequence,
			Guard:          g,
			Locker:         locker,
			Notifier:       fanout,
			Mailer:         newMailer(cfg),
			Links:          links,
		}),
		Search: search.NewService(search.ServiceDeps{
			Users:       st.users,
			Offers:      st.offers,
			Commissions: st.commissions,
		}),
		Chats: chat.NewService(chat.ServiceDeps{
			ChatRepo: st.chats,
			Guard:    g,
			Locker:   locker,
			Notifier: fanout,
		}),
		Follows: follow.NewService(follow.ServiceDeps{
			FollowRepo: st.follows,
			UserRepo:   st.users,
			Notifier:   fanout,
		}),
		Support: support.NewService(support.ServiceDeps{
			SupportRepo: st.support,
			Notifier:    fanout,
		}),
		Notifications: notification.NewService(notification.ServiceDeps{
			Repo:  st.notifications,
			Links: links,
		}),
		Tags:        tag.NewService(tag.ServiceDeps{TagRepo: st.tags}),
		JWTProvider: jwtProvider,
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv, "storage", cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "err", err)
		return
	}
	slog.Info("server stopped")
}

// newMailer returns nil when SMTP_HOST is unset, which turns commission emails off.
func newMailer(cfg *config.Config) smtp.Mailer {
	if cfg.SMTPHost == "" {
		slog.Info("SMTP_HOST not set: commission emails disabled")
		return nil
	}
	return smtp.NewMailer(cfg)
}
