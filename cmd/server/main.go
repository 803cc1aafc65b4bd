package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dingauth/internal/audit"
	"dingauth/internal/dingtalk/apps"
	"dingauth/internal/dingtalk/client"
	"dingauth/internal/dingtalk/token"
	"dingauth/internal/federation/adapters"
	"dingauth/internal/federation/handler"
	"dingauth/internal/federation/metrics"
	"dingauth/internal/federation/models"
	"dingauth/internal/federation/service"
	userstore "dingauth/internal/federation/store/user"
	jwttoken "dingauth/internal/jwt_token"
	"dingauth/internal/platform/config"
	"dingauth/internal/platform/database"
	"dingauth/internal/platform/health"
	"dingauth/internal/platform/kafka"
	"dingauth/internal/platform/logger"
	"dingauth/internal/platform/redis"
	"dingauth/internal/platform/tracer"
	"dingauth/internal/ratelimit"
	"dingauth/pkg/platform/circuit"
	"dingauth/pkg/platform/middleware/metadata"
	"dingauth/pkg/platform/middleware/request"
	"dingauth/pkg/platform/middleware/requesttime"
	"dingauth/pkg/secrets"
)

func main() {
	configPath := flag.String("config", os.Getenv("DINGAUTH_CONFIG"), "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run wires dependencies, serves HTTP and blocks until SIGINT or SIGTERM.
func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("initializing dingauth",
		"addr", cfg.Server.Addr,
		"environment", cfg.Environment,
		"dingtalk_enabled", cfg.DingTalk.Enabled,
		"apps", len(cfg.DingTalk.Apps),
	)

	healthHandler := health.New(cfg.Environment)

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		healthHandler.RegisterCheck("redis", redisClient.Health)
		go recordPoolStats(ctx, redisClient)
	}

	pool, err := database.New(ctx, cfg.Database)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
		healthHandler.RegisterCheck("postgres", pool.Health)
		if cfg.Database.AutoMigrate {
			applied, err := pool.Migrate(ctx)
			if err != nil {
				return fmt.Errorf("migrate database: %w", err)
			}
			log.Info("database migrated", "applied", applied)
		}
	}

	trace := tracer.Tracer(tracer.NewNoop())
	if cfg.Tracing.Enabled {
		tp, err := tracer.NewProvider(ctx, tracer.ProviderConfig{
			ServiceName: cfg.Tracing.ServiceName,
			Environment: cfg.Environment,
			Exporter:    cfg.Tracing.Exporter,
			Endpoint:    cfg.Tracing.Endpoint,
			Insecure:    cfg.Tracing.Insecure,
			SampleRatio: cfg.Tracing.SampleRatio,
		})
		if err != nil {
			return err
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(flushCtx); err != nil {
				log.Warn("tracer shutdown failed", "error", err)
			}
		}()
		trace = tp.Tracer()
	}

	auditStore := audit.Store(audit.NewInMemoryStore(cfg.Audit.MemoryCapacity))
	if cfg.Kafka.Brokers != "" {
		producer, err := kafka.New(kafka.Config{
			Brokers:         cfg.Kafka.Brokers,
			Acks:            cfg.Kafka.Acks,
			Retries:         cfg.Kafka.Retries,
			DeliveryTimeout: cfg.Kafka.DeliveryTimeout,
		}, log)
		if err != nil {
			return err
		}
		defer producer.Close()
		healthHandler.RegisterCheck("kafka", producer.Health)
		auditStore = audit.NewKafkaStore(producer, cfg.Kafka.Topic)
	}
	auditPublisher := audit.NewPublisher(auditStore,
		audit.WithAsyncBuffer(cfg.Audit.BufferSize),
		audit.WithPublisherLogger(log),
	)
	defer auditPublisher.Close()

	users, err := buildUserStore(ctx, pool, cfg.DingTalk.Users)
	if err != nil {
		return err
	}

	loginMetrics := metrics.New()
	tokenStore := token.Store(token.NewMemoryStore())
	if redisClient != nil {
		tokenStore = token.NewRedisStore(redisClient.Client, cfg.Redis.KeyPrefix)
	}

	api := client.New(cfg.DingTalk.BaseURL, cfg.DingTalk.HTTPTimeout, client.WithTracer(trace))
	tokens := token.New(api,
		token.WithStore(tokenStore),
		token.WithSkew(cfg.DingTalk.TokenSkew),
		token.WithLogger(log),
		token.WithTracer(trace),
	)
	provider := adapters.NewDingTalkProvider(api, tokens,
		adapters.WithLogger(log),
		adapters.WithMetrics(loginMetrics),
	)

	svc, err := service.New(provider, apps.NewRegistry(cfg.DingTalk.AppSecrets()), users,
		service.WithLogger(log),
		service.WithMetrics(loginMetrics),
		service.WithTracer(trace),
		service.WithAuditor(auditPublisher),
	)
	if err != nil {
		return err
	}

	var loginMW []func(http.Handler) http.Handler
	if cfg.RateLimit.Enabled {
		limitStore := ratelimit.Store(ratelimit.NewInMemoryStore())
		if redisClient != nil {
			limitStore = ratelimit.NewFallbackStore(
				ratelimit.NewRedisStore(redisClient.Client, cfg.RateLimit.KeyPrefix),
				limitStore,
				circuit.New("ratelimit-redis"),
				log,
			)
		}
		loginMW = append(loginMW, ratelimit.Middleware(limitStore, ratelimit.Config{
			Limit:  cfg.RateLimit.Limit,
			Window: cfg.RateLimit.Window,
		}, log))
	}

	sessions := jwttoken.NewJWTService(cfg.Session.SigningKey, cfg.Session.Issuer, cfg.Session.Audience, cfg.Session.TTL)
	failure := handler.JSONFailureHandler{}
	loginHandler := handler.New(svc, handler.Config{
		Enabled:         cfg.DingTalk.Enabled,
		Path:            cfg.DingTalk.Login.Path,
		PostOnly:        cfg.DingTalk.Login.PostOnly,
		CodeParameter:   cfg.DingTalk.Login.CodeParameter,
		UserIDParameter: cfg.DingTalk.Login.UserIDParameter,
		AppKeyParameter: cfg.DingTalk.Login.AppKeyParameter,
	}, log,
		handler.WithFailureHandler(failure),
		handler.WithSuccessHandler(handler.NewTokenSuccessHandler(sessions, failure, log)),
		handler.WithSessionValidator(jwttoken.NewJWTServiceAdapter(sessions)),
		handler.WithLoginMiddleware(loginMW...),
	)

	proxies, err := metadata.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(request.Recovery(log))
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.NewMiddleware(&metadata.Config{TrustedProxies: proxies}).Handler)
	r.Use(request.Logger(log))
	r.Use(request.LatencyMiddleware(request.NewMetrics()))
	r.Use(request.Timeout(cfg.Server.RequestTimeout))

	healthHandler.Register(r)
	r.Handle("/metrics", promhttp.Handler())
	loginHandler.Register(r)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting http server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("server stopped")
	return nil
}

// buildUserStore picks Postgres when a database is configured, otherwise an
// in-memory store seeded from config.
func buildUserStore(ctx context.Context, pool *database.Pool, seeds []config.UserSeed) (service.UserDetailsService, error) {
	if pool != nil {
		return userstore.NewPostgres(pool.DB()), nil
	}
	store := userstore.NewInMemoryStore()
	for _, seed := range seeds {
		hash := seed.Password
		if hash != "" && !secrets.IsHashed(hash) {
			var err error
			if hash, err = secrets.HashPassword(hash); err != nil {
				return nil, fmt.Errorf("hash password for %s: %w", seed.Username, err)
			}
		}
		err := store.Save(ctx, &models.LocalUser{
			DingTalkUserID: seed.UserID,
			UnionID:        seed.UnionID,
			Name:           seed.Username,
			PasswordHash:   hash,
			DisplayAlias:   seed.Alias,
			RoleNames:      seed.Roles,
			Grants:         seed.Authorities,
			Disabled:       seed.Disabled,
			Locked:         seed.Locked,
		})
		if err != nil {
			return nil, fmt.Errorf("seed user %s: %w", seed.Username, err)
		}
	}
	return store, nil
}

func recordPoolStats(ctx context.Context, c *redis.Client) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.RecordPoolStats()
		}
	}
}
