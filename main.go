package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"shop-bot/internal/accounting"
	accounting_api "shop-bot/internal/accounting/api"
	accounting_db "shop-bot/internal/accounting/db"
	"shop-bot/internal/config"
	"shop-bot/internal/database/migrations"
	"shop-bot/internal/kafka"
	"shop-bot/internal/logger"
	"shop-bot/internal/roles"
	"shop-bot/internal/sheets"
	"shop-bot/internal/stats"
	"shop-bot/internal/stock"
	stock_api "shop-bot/internal/stock/api"
	stock_db "shop-bot/internal/stock/db"
	"shop-bot/internal/tickets"
	tickets_api "shop-bot/internal/tickets/api"
	tickets_db "shop-bot/internal/tickets/db"
	rediswrap "shop-bot/internal/tickets/redis"
	"shop-bot/internal/transcript"
	transcript_api "shop-bot/internal/transcript/api"
)

func verifyConnections(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*bun.DB, *redis.Client) {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		logger.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			logger.Error("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
			time.Sleep(2 * time.Second)
			continue
		}

		err = sqldb.Ping()
		if err == nil {
			break
		}

		logger.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	logger.Info("DATABASE", "PostgreSQL connection successful")
	bunDB := bun.NewDB(sqldb, pgdialect.New())

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	logger.Info("DATABASE", fmt.Sprintf("Redis connection successful to %s", cfg.Redis.Addr))

	return bunDB, redisClient
}

func requestLogger(logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.LogAPI(r.Method, r.URL.Path, "done", time.Since(start).String())
		})
	}
}

func main() {
	logger := logger.NewLogger()
	defer logger.Close()

	logger.Info("APP", "Starting Shop Bot core initialization")

	if err := godotenv.Load(); err != nil {
		logger.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		logger.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("APP", "Verifying database connections")
	bunDB, redisClient := verifyConnections(ctx, cfg, logger)
	defer bunDB.Close()
	defer redisClient.Close()

	runner := migrations.NewRunner(bunDB, migrations.DefaultOptions())
	if err := runner.RunMigrations(); err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
	}
	defer runner.Close()
	logger.Info("DATABASE", "Migrations applied")

	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		logger.Info("KAFKA", fmt.Sprintf("Using Kafka brokers: %v", cfg.Kafka.Brokers))
		producer = kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()

		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, kafka.Topics); err != nil {
			logger.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			logger.Info("KAFKA", "Required topics ensured successfully")
		}
	} else {
		logger.Warn("KAFKA", "Kafka disabled, shop events will not be published")
	}

	stockDB := &stock_db.DB{Bun: bunDB}
	logsDB := &accounting_db.DB{Bun: bunDB}
	ticketsDB := &tickets_db.DB{Bun: bunDB}

	var stockKafka stock.KafkaPublisher
	var acctKafka accounting.KafkaPublisher
	var ticketKafka tickets.KafkaPublisher
	var statsKafka stats.Publisher
	if producer != nil {
		stockKafka = producer
		acctKafka = producer
		ticketKafka = producer
		statsKafka = producer
	}

	stockService := stock.NewStockService(stockDB, stockKafka, cfg.Roles)

	sheetsClient := sheets.NewClient(cfg.External)
	rolesClient := roles.NewClient(cfg.External)
	accountingService := accounting.NewAccountingService(
		logsDB,
		stockDB,
		rolesClient,
		sheetsClient,
		acctKafka,
		cfg.Roles,
	)

	transcriptClient := transcript.NewClient(cfg.External)
	ticketService := tickets.NewTicketService(
		ticketsDB,
		rediswrap.NewRedis(redisClient, cfg.Redis),
		transcriptClient,
		accountingService,
		stockDB,
		ticketKafka,
		cfg.Roles,
	)

	statsService := stats.NewService(logsDB, statsKafka, cfg.Shop.SalesBaseline)
	go statsService.Run(ctx, 10*time.Minute)

	if producer != nil {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, kafka.TopicPurchaseLogged, cfg.Kafka.GroupID)
		defer consumer.Close()
		go consumer.Start(ctx, statsService.OnPurchaseEvent)
	}

	stockHandler := &stock_api.Handler{StockService: stockService}
	ticketHandler := &tickets_api.Handler{TicketService: ticketService}
	accountingHandler := &accounting_api.Handler{
		AccountingService: accountingService,
		StatsService:      statsService,
	}
	transcriptHandler := &transcript_api.Handler{
		DataDir: cfg.External.TranscriptDataDir,
	}

	logger.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(requestLogger(logger))

	stockHandler.RegisterRoutes(r)
	logger.Info("ROUTER", "Stock routes registered under /api/stock")

	ticketHandler.RegisterRoutes(r)
	logger.Info("ROUTER", "Ticket routes registered under /api/tickets")

	accountingHandler.RegisterRoutes(r)
	logger.Info("ROUTER", "Accounting routes registered under /api/logs")

	r.Get("/view", transcriptHandler.View)
	r.Get("/download", transcriptHandler.Download)
	logger.Info("ROUTER", "Transcript routes registered at /view and /download")

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP", fmt.Sprintf("Shop Bot core running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	logger.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	cancel()
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	}

	logger.Info("APP", "Shutdown complete")
}
