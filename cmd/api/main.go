// @title                       Mystom API
// @version                     1.0
// @description                 Telegram Mini App backend for dental clinics: initData authentication, subscription tiers and assistant delegation.
// @BasePath                    /
// @securityDefinitions.apikey  TelegramInitData
// @in                          header
// @name                        X-Telegram-Init-Data
// @description                 Raw Telegram Mini App initData
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

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/DentShare/Mystom/internal/api"
	"github.com/DentShare/Mystom/internal/api/handler"
	"github.com/DentShare/Mystom/internal/api/middleware"
	"github.com/DentShare/Mystom/internal/core/service"
	mongostore "github.com/DentShare/Mystom/internal/infrastructure/db/mongo"
	redisstore "github.com/DentShare/Mystom/internal/infrastructure/db/redis"
	"github.com/DentShare/Mystom/internal/pkg/config"
	"github.com/DentShare/Mystom/pkg/initdata"
	"github.com/DentShare/Mystom/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "mystom",
	})
	log.Info().
		Str("env", cfg.Env).
		Str("bot_token", cfg.MaskedBotToken()).
		Int("admins", len(cfg.Telegram.AdminIDs)).
		Msg("starting")

	client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, dcancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer dcancel()
		if err := client.Disconnect(dctx); err != nil {
			log.Error().Err(err).Msg("mongo disconnect")
		}
	}()
	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	checks := map[string]handler.Check{
		"mongodb": func(ctx context.Context) error { return client.Ping(ctx, nil) },
	}

	var limiter middleware.Limiter
	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		limiter = redisstore.NewThrottle(rdb, cfg.Throttle.Rate, cfg.Throttle.Period)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	} else {
		log.Warn().Msg("REDIS_ADDR empty, throttling per process")
		limiter = middleware.NewLocalLimiter(cfg.Throttle.Rate, cfg.Throttle.Period)
	}

	verifier, err := initdata.NewVerifier(initdata.Options{
		Secret: cfg.Telegram.BotToken,
		MaxAge: cfg.Telegram.InitDataMaxAge,
	})
	if err != nil {
		return err
	}

	accountRepo := mongostore.NewAccountRepository(client, db)
	teamRepo := mongostore.NewTeamRepository(client, db)

	accounts := service.NewAccountService(accountRepo, cfg.Telegram.AdminIDs, logger.Component("accounts"))
	access := service.NewAccessService(accountRepo, teamRepo, time.Now, logger.Component("access"))
	teams := service.NewTeamService(accountRepo, teamRepo, service.TeamOptions{InviteTTL: cfg.Team.InviteTTL}, logger.Component("team"))

	e := api.NewRouter(api.Deps{
		Verifier: verifier,
		Limiter:  limiter,
		Accounts: accounts,
		Access:   access,
		Teams:    teams,
		Checks:   checks,
		Log:      logger.Component("http"),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return shutdown(srv, log)
	})

	return g.Wait()
}

func shutdown(srv *http.Server, log zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info().Msg("shutting down")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
