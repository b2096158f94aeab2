package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fejiro0/gomart/internal/auth"
	"github.com/fejiro0/gomart/internal/cache"
	"github.com/fejiro0/gomart/internal/cart"
	"github.com/fejiro0/gomart/internal/config"
	"github.com/fejiro0/gomart/internal/db"
	"github.com/fejiro0/gomart/internal/events"
	api "github.com/fejiro0/gomart/internal/http"
	"github.com/fejiro0/gomart/internal/http/ban"
	"github.com/fejiro0/gomart/internal/http/handlers"
	rl "github.com/fejiro0/gomart/internal/http/rate_limiter"
	"github.com/fejiro0/gomart/internal/inventory"
	"github.com/fejiro0/gomart/internal/logger"
	"github.com/fejiro0/gomart/internal/redissvc"
	"github.com/fejiro0/gomart/internal/repo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var storeFlag string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API with the reservation sweeper and outbox worker",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&storeFlag, "store", "", "storage backend: postgres or memory (overrides config)")
}

// backend is the storage-dependent part of the process.
type backend struct {
	store   *repo.Store
	cache   cache.ProductCache
	strikes ban.Strikes
	closers []func()
}

func (b *backend) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackend(ctx context.Context, cfg *config.Config, log *zap.Logger) (*backend, error) {
	b := &backend{}

	if cfg.Store == config.StoreMemory {
		log.Warn("using in-memory storage, data is lost on exit")
		b.store = repo.NewMemoryStore()
		b.cache = cache.NewMemory()
		b.strikes = ban.NewMemoryStrikes(cfg.Auth.MaxStrikes, cfg.Auth.LockoutWindow)
		return b, nil
	}

	applied, err := db.RunMigrations(cfg.Postgres.DSN)
	if err != nil {
		return nil, err
	}
	if applied {
		log.Info("database migrations applied")
	}

	pool, err := db.Connect(ctx, cfg.Postgres)
	if err != nil {
		return nil, err
	}
	b.closers = append(b.closers, pool.Close)

	b.store, err = repo.NewPostgresStore(pool)
	if err != nil {
		b.close()
		return nil, err
	}

	rs, err := redissvc.Connect(ctx, cfg.Redis)
	if err != nil {
		b.close()
		return nil, err
	}
	b.closers = append(b.closers, func() { _ = rs.Close() })

	b.cache = cache.NewRedisProductCache(rs, cfg.Redis.ProductTTL, log)
	b.strikes = ban.NewRedisStrikes(rs, cfg.Auth.MaxStrikes, cfg.Auth.LockoutWindow)
	return b, nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if storeFlag != "" {
		if storeFlag != config.StorePostgres && storeFlag != config.StoreMemory {
			return nil, fmt.Errorf("unknown store %q", storeFlag)
		}
		cfg.Store = storeFlag
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Error("could not open storage", zap.String("store", cfg.Store), zap.Error(err))
		return err
	}
	defer b.close()

	ledger := inventory.NewLedger(b.store.Products, b.store.Movements, b.store.Outbox, log)
	stockSvc := inventory.NewService(b.store.Tx, b.store.Products, ledger, b.cache, log)
	cartSvc := cart.NewService(b.store, ledger, b.cache, cfg.Cart.ReservationTTL, log)
	authSvc := auth.NewAuthService(b.store.Vendors, b.strikes, auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), log)

	handlers.SetLogger(log)
	handlers.SetProductRepo(b.store.Products)
	handlers.SetMovementRepo(b.store.Movements)
	handlers.SetMetricsRepo(b.store.Metrics)
	handlers.SetCategoryRepo(b.store.Categories)
	handlers.SetProductCache(b.cache)
	handlers.SetCartService(cartSvc)
	handlers.SetStockService(stockSvc)
	handlers.SetAuthService(authSvc)

	limiter := rl.New(cfg.HTTP.RateLimit, cfg.HTTP.RateBurst)
	srv := api.NewServer(api.NewRouter(authSvc, limiter, cfg.HTTP.TrustProxy, log), cfg.HTTP)

	publisher := events.NewPublisher(cfg.Kafka, log)
	defer func() { _ = publisher.Close() }()

	sweeper := cart.NewSweeper(cartSvc, cfg.Cart.SweepInterval, cfg.Cart.SweepBatch, log)
	outbox := events.NewOutboxWorker(b.store.Outbox, publisher, cfg.Kafka.PollInterval, cfg.Kafka.BatchSize, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server running", zap.String("port", cfg.HTTP.Port), zap.String("store", cfg.Store))
		return srv.Run()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Stop(shutdownCtx)
	})
	g.Go(func() error { return sweeper.Run(gctx) })
	g.Go(func() error { return outbox.Run(gctx) })
	g.Go(func() error { return limiter.Cleanup(gctx) })

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", zap.Error(err))
		return err
	}
	log.Info("server stopped")
	return nil
}
