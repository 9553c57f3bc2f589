// Command fittrack-server runs the fitness assistant: the Telegram bot, the
// gRPC Assistant service and the HTTP health/metrics/API endpoints.
package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/and161185/fittrack/internal/bot"
	"github.com/and161185/fittrack/internal/config"
	"github.com/and161185/fittrack/internal/form"
	"github.com/and161185/fittrack/internal/lookup"
	"github.com/and161185/fittrack/internal/metrics"
	"github.com/and161185/fittrack/internal/migrate"
	"github.com/and161185/fittrack/internal/repository"
	"github.com/and161185/fittrack/internal/repository/memory"
	"github.com/and161185/fittrack/internal/repository/postgres"
	grpcserver "github.com/and161185/fittrack/internal/server/grpc"
	httpserver "github.com/and161185/fittrack/internal/server/http"
	"github.com/and161185/fittrack/internal/service"
	"github.com/and161185/fittrack/internal/session"
	"github.com/and161185/fittrack/internal/transport/telegram"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

const shutdownTimeout = 5 * time.Second

func main() {
	path := flag.String("config", envOr("CONFIG_PATH", "config.yaml"), "path to the YAML config")
	flag.Parse()

	cfg, err := config.Load(*path)
	if err != nil {
		// logger is not configured yet
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("app", cfg.App.Name),
		zap.String("version", version),
		zap.String("buildDate", buildDate),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	var pingers []httpserver.Pinger

	// Storage
	var (
		profiles repository.ProfileRepository
		logs     repository.LogRepository
	)
	if cfg.Database.DSN != "" {
		if cfg.Database.Migrate {
			if err := migrate.Up(ctx, cfg.Database.DSN, logger); err != nil {
				return err
			}
		}
		db, err := postgres.New(ctx, cfg.Database.DSN, cfg.Database.MaxConnections)
		if err != nil {
			return err
		}
		defer db.Close()
		profiles, logs = postgres.NewProfileRepo(db), postgres.NewLogRepo(db)
		pingers = append(pingers, db)
		logger.Info("storage: postgres")
	} else {
		store := memory.New()
		profiles, logs = store, store
		logger.Warn("storage: in-memory, data is lost on restart")
	}

	// Sessions
	var sessions session.Store = session.NewMemoryStore()
	if cfg.Redis.Address != "" {
		client, err := session.NewRedisClient(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize)
		if err != nil {
			logger.Warn("redis unavailable, sessions kept in memory", zap.Error(err))
		} else {
			defer func() { _ = client.Close() }()
			sessions = session.NewRedisStore(client, cfg.Session.KeyPrefix, cfg.Session.TTL)
			pingers = append(pingers, redisPinger{client})
			logger.Info("sessions: redis", zap.String("addr", cfg.Redis.Address))
		}
	}

	// Core
	weather := lookup.NewOpenWeather(cfg.Weather.BaseURL, cfg.Weather.APIKey, cfg.Weather.Timeout, logger)
	nutrition := lookup.NewOpenFoodFacts(cfg.Nutrition.BaseURL, cfg.Nutrition.Timeout, logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	tracker := service.NewTrackerService(profiles, logs, service.WithLocation(loc))
	engine := form.NewEngine(sessions, weather, tracker, logger)
	dispatcher := bot.NewDispatcher(tracker, engine, nutrition, m, logger)

	g, gctx := errgroup.WithContext(ctx)

	// Telegram
	if cfg.Telegram.BotToken != "" {
		api, err := telegram.NewAPI(cfg.Telegram.BotToken, cfg.Telegram.Debug)
		if err != nil {
			return err
		}
		logger.Info("telegram authorized", zap.String("account", api.Self.UserName))
		u := tgbotapi.NewUpdate(0)
		u.Timeout = cfg.Telegram.Timeout
		updates := api.GetUpdatesChan(u)
		tg := telegram.New(api, dispatcher, cfg.Telegram.Workers, m, logger)
		g.Go(func() error {
			tg.Run(gctx, updates)
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			api.StopReceivingUpdates()
			return nil
		})
	}

	// gRPC
	if cfg.GRPC.Addr != "" {
		gs, err := grpcserver.NewGRPCServer(grpcserver.New(dispatcher, m), grpcserver.Options{
			TLSCert:    cfg.GRPC.TLSCert,
			TLSKey:     cfg.GRPC.TLSKey,
			Reflection: cfg.GRPC.Reflection,
		}, logger)
		if err != nil {
			return err
		}
		lis, err := net.Listen("tcp", cfg.GRPC.Addr)
		if err != nil {
			return err
		}
		g.Go(func() error {
			logger.Info("grpc listening", zap.String("addr", cfg.GRPC.Addr), zap.Bool("tls", cfg.GRPC.TLSCert != ""))
			return gs.Serve(lis)
		})
		g.Go(func() error {
			<-gctx.Done()
			done := make(chan struct{})
			go func() {
				gs.GracefulStop()
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(shutdownTimeout):
				gs.Stop()
			}
			return nil
		})
	}

	// HTTP
	if cfg.HTTP.Addr != "" {
		hs := &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           httpserver.New(tracker, dispatcher, reg, m, logger, pingers...).Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			logger.Info("http listening", zap.String("addr", cfg.HTTP.Addr))
			if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return hs.Shutdown(sctx)
		})
	}

	return g.Wait()
}

func newLogger(c config.LoggingConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}
	if c.Level != "" {
		lvl, err := zap.ParseAtomicLevel(c.Level)
		if err != nil {
			return nil, err
		}
		zc.Level = lvl
	}
	return zc.Build()
}

type redisPinger struct{ c *redis.Client }

func (p redisPinger) Ping(ctx context.Context) error { return p.c.Ping(ctx).Err() }

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
