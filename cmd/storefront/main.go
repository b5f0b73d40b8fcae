package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KoBrAIbrahim/originalBrand/internal/auth"
	"github.com/KoBrAIbrahim/originalBrand/internal/cache"
	"github.com/KoBrAIbrahim/originalBrand/internal/catalog"
	"github.com/KoBrAIbrahim/originalBrand/internal/config"
	"github.com/KoBrAIbrahim/originalBrand/internal/events"
	ordersgrpc "github.com/KoBrAIbrahim/originalBrand/internal/grpc"
	h "github.com/KoBrAIbrahim/originalBrand/internal/http"
	"github.com/KoBrAIbrahim/originalBrand/internal/ledger"
	"github.com/KoBrAIbrahim/originalBrand/internal/logger"
	"github.com/KoBrAIbrahim/originalBrand/internal/seed"
	"github.com/KoBrAIbrahim/originalBrand/internal/store"
	"github.com/KoBrAIbrahim/originalBrand/internal/store/mongostore"
	"github.com/KoBrAIbrahim/originalBrand/internal/store/sqlstore"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	envFile := flag.String("env", ".env", "path to an optional .env file")
	tokenFor := flag.String("issue-admin-token", "", "print an admin token for the given subject and exit")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "lifetime of an issued admin token")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *tokenFor != "" {
		token, err := auth.IssueAdminToken([]byte(cfg.AdminJWTSecret), *tokenFor, *tokenTTL)
		if err != nil {
			log.Fatalf("Failed to issue token: %v", err)
		}
		fmt.Println(token)
		return
	}

	zapLog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLog.Sync()

	ctx := context.Background()

	st, err := openStore(ctx, cfg, zapLog)
	if err != nil {
		zapLog.Fatal("failed to open store", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer st.Close()

	productCache, closeCache := openCache(ctx, cfg, zapLog)
	defer closeCache()

	publisher := openPublisher(cfg, zapLog)
	defer publisher.Close()

	catalogService := catalog.NewService(st, productCache, zapLog)
	orderLedger := ledger.NewLedger(st, productCache, zapLog)

	relayCtx, stopRelay := context.WithCancel(ctx)
	relayDone := make(chan struct{})
	go func() {
		defer close(relayDone)
		events.NewOutboxRelay(st, publisher, cfg.OutboxInterval, zapLog).Run(relayCtx)
	}()

	if cfg.SeedFile != "" {
		if _, err := seed.LoadFile(ctx, cfg.SeedFile, st, catalogService, zapLog); err != nil {
			zapLog.Fatal("failed to seed catalog", zap.String("file", cfg.SeedFile), zap.Error(err))
		}
	}

	router := h.NewRouter(
		h.RouterConfig{
			AdminSecret:    []byte(cfg.AdminJWTSecret),
			RequestTimeout: cfg.RequestTimeout,
		},
		h.NewProductHandler(catalogService, zapLog),
		h.NewOrdersHandler(orderLedger, zapLog),
		zapLog,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zapLog.Info("storefront starting", zap.String("port", cfg.HTTPPort), zap.String("store", cfg.StoreBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("server error", zap.Error(err))
		}
	}()

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		zapLog.Fatal("failed to listen", zap.String("port", cfg.GRPCPort), zap.Error(err))
	}
	grpcServer := ordersgrpc.NewServer(
		ordersgrpc.ServerConfig{AdminSecret: []byte(cfg.AdminJWTSecret)},
		ordersgrpc.NewOrdersHandler(orderLedger, zapLog),
		zapLog,
	)
	go func() {
		zapLog.Info("orders gRPC service listening", zap.String("port", cfg.GRPCPort))
		if err := grpcServer.Serve(lis); err != nil {
			zapLog.Fatal("grpc server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("server forced to shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()
	stopRelay()
	<-relayDone
	zapLog.Info("server exited")
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		db, err := mongostore.ConnectMongoDB(connectCtx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, err
		}
		st := mongostore.NewStore(db)
		if err := st.CreateIndexes(connectCtx); err != nil {
			st.Close()
			return nil, err
		}
		log.Info("connected to MongoDB", zap.String("database", cfg.MongoDBName))
		return st, nil

	case config.BackendPostgres:
		st, err := sqlstore.OpenPostgres(&sqlstore.Credentials{
			Host:              cfg.DBHost,
			Port:              cfg.DBPort,
			User:              cfg.DBUser,
			Password:          cfg.DBPassword,
			DBName:            cfg.DBName,
			MigrationsDirPath: cfg.MigrationsPath,
		})
		if err != nil {
			return nil, err
		}
		if err := st.RunMigrations(cfg.MigrationsPath); err != nil {
			st.Close()
			return nil, err
		}
		log.Info("connected to PostgreSQL", zap.String("host", cfg.DBHost), zap.String("database", cfg.DBName))
		return st, nil

	case config.BackendSQLite:
		st, err := sqlstore.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := st.RunMigrations(cfg.MigrationsPath); err != nil {
			st.Close()
			return nil, err
		}
		log.Info("opened SQLite database", zap.String("path", cfg.SQLitePath))
		return st, nil
	}

	log.Warn("using in-memory store, data is lost on restart")
	return store.NewMemoryStore(), nil
}

func openCache(ctx context.Context, cfg *config.Config, log *zap.Logger) (cache.ProductCache, func()) {
	if cfg.RedisAddr == "" {
		return cache.NoopCache{}, func() {}
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warn("redis ping failed, product reads will go to the store until it recovers", zap.Error(err))
	} else {
		log.Info("redis ping succeeded", zap.String("addr", cfg.RedisAddr))
	}
	return cache.NewRedisCache(redisClient), func() { redisClient.Close() }
}

func openPublisher(cfg *config.Config, log *zap.Logger) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		log.Info("no kafka brokers configured, order events are marked published without delivery")
		return events.NopPublisher{}
	}
	writer := events.NewKafkaWriter(cfg.KafkaTopic, cfg.KafkaBrokers...)
	log.Info("publishing order events", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	return events.NewKafkaPublisher(writer, cfg.KafkaPublishTimeout, log)
}
