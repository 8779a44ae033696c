package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandp/medstock/internal/cache"
	"github.com/sandp/medstock/internal/config"
	"github.com/sandp/medstock/internal/events"
	"github.com/sandp/medstock/internal/httpserver"
	"github.com/sandp/medstock/internal/repo"
	"github.com/sandp/medstock/internal/search"
	"github.com/sandp/medstock/internal/service"
	"github.com/sandp/medstock/internal/transport"
	pkgdb "github.com/sandp/medstock/pkg/db"
	"github.com/sandp/medstock/pkg/logging"
	middleware "github.com/sandp/medstock/pkg/middleware/auth"
	"github.com/sandp/medstock/pkg/middleware/csrf"
	"github.com/sandp/medstock/pkg/middleware/ratelimit"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		if err := cfg.ValidateServe(); err != nil {
			return err
		}
		return serve(cfg)
	},
}

func serve(cfg config.ServiceConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sinks []slog.Handler
	var mongoSink *logging.MongoHandler
	if cfg.MongoLogURI != "" {
		h, err := logging.NewMongoHandler(ctx, cfg.MongoLogURI, cfg.ServiceName, "logs", logging.ParseLevel(cfg.LogLevel))
		if err != nil {
			log.Printf("warning: mongo log sink disabled: %v", err)
		} else {
			mongoSink = h
			sinks = append(sinks, h)
		}
	}
	logger := logging.New(cfg.LogLevel, sinks...).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	r := repo.New(db)
	if err := r.Migrate(ctx); err != nil {
		return err
	}

	var publisher events.Publisher = events.Nop{}
	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers)
		publisher = producer
	}

	var index service.ProductIndex
	if cfg.ESURL != "" {
		ix, err := search.NewIndex(ctx, search.Config{
			URL:      cfg.ESURL,
			User:     cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		})
		if err != nil {
			logger.Warn("search_index_disabled", "error", err)
		} else {
			index = ix
		}
	}

	var kpis service.KPICache
	var redisCache *cache.Redis
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedis(cfg.RedisURL, cfg.KPICacheTTL)
		if err == nil {
			err = rc.Ping(ctx)
		}
		if err != nil {
			logger.Warn("kpi_cache_disabled", "error", err)
		} else {
			redisCache = rc
			kpis = rc
		}
	}

	users := &service.UserService{Repo: r, Events: publisher, JWTSecret: cfg.JWTSecret}
	seller := transport.Party{
		Name:        cfg.Seller.Name,
		Address:     cfg.Seller.Address,
		GSTIN:       cfg.Seller.GSTIN,
		DrugLicense: cfg.Seller.DrugLicense,
	}

	limiter := ratelimit.PerMinute(cfg.LoginRatePerMin)
	go limiter.Run(ctx)

	var csrfCfg *csrf.Config
	if cfg.CSRFEnabled {
		c := csrf.DefaultConfig()
		c.Secure = cfg.CookieSecure
		c.SkipPaths = []string{"/api/auth/login"}
		csrfCfg = &c
	}

	e := httpserver.NewEcho(logger, csrfCfg)
	httpserver.Register(e, &httpserver.Deps{
		CatalogHandler: &httpserver.CatalogHTTP{Svc: &service.CatalogService{
			Repo: r, Events: publisher, Index: index, Cache: kpis,
		}},
		OrderHandler: &httpserver.OrderHTTP{Svc: &service.OrderService{
			Repo: r, Events: publisher, Cache: kpis,
			InvoicePrefix: cfg.InvoicePrefix, Seller: seller,
		}},
		ReportHandler: &httpserver.ReportHTTP{Svc: &service.ReportService{Repo: r, Cache: kpis}},
		UserHandler:   &httpserver.UserHTTP{Svc: users, CookieSecure: cfg.CookieSecure},
		Session:       middleware.NewSessionMiddleware(cfg.JWTSecret, users, cfg.CookieSecure),
		LoginLimiter:  limiter,
		Ready:         r.Ping,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			logger.Error("http_server_error", "error", err)
		}
	}

	logger.Info("shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka_close_error", "error", err)
		}
	}
	if redisCache != nil {
		_ = redisCache.Close()
	}
	if err := pkgdb.Close(db); err != nil {
		logger.Error("db_close_error", "error", err)
	}
	if mongoSink != nil {
		_ = mongoSink.Close(shutdownCtx)
	}

	log.Println("medstock stopped")
	return nil
}
