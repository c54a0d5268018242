package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpadp "sacco-ledger/internal/adapter/http"
	"sacco-ledger/internal/adapter/repository/mysql"
	"sacco-ledger/internal/config"
	"sacco-ledger/internal/domain/notification"
	"sacco-ledger/internal/infrastructure/auth"
	"sacco-ledger/internal/infrastructure/broker"
	"sacco-ledger/internal/infrastructure/cache"
	"sacco-ledger/internal/infrastructure/db"
	"sacco-ledger/internal/infrastructure/gateway"
	"sacco-ledger/internal/infrastructure/metrics"
	ucAccount "sacco-ledger/internal/usecase/account"
	ucApproval "sacco-ledger/internal/usecase/approval"
	"sacco-ledger/internal/usecase/ledger"
	"sacco-ledger/internal/usecase/loan"
	ucMobile "sacco-ledger/internal/usecase/mobilemoney"
	"sacco-ledger/internal/usecase/transfer"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		log.Fatalf("database handle: %v", err)
	}
	defer sqlDB.Close()
	if cfg.DBAutoMigrate {
		if err := db.Migrate(gdb, mysql.Models()...); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	rdb, err := cache.OpenRedis(context.Background(), cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	var events notification.Publisher = notification.NopPublisher{}
	if cfg.AMQPURL != "" {
		pub, err := broker.Dial(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Fatalf("rabbitmq: %v", err)
		}
		defer pub.Close()
		events = pub
	} else {
		log.Println("AMQP_URL not set, notifications stay in the database")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err := metrics.Register(reg); err != nil {
		log.Fatalf("metrics: %v", err)
	}

	tx := mysql.NewGormUoW(gdb)
	l := ledger.NewUsecase(tx, events)
	services := httpadp.Services{
		Accounts:    ucAccount.NewUsecase(tx, l),
		Ledger:      l,
		Transfers:   transfer.NewUsecase(tx, l),
		MobileMoney: ucMobile.NewUsecase(tx, l, gateway.NewSimulator()),
		Loans:       loan.NewUsecase(tx, l),
		Approvals:   ucApproval.NewUsecase(tx, l),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger(), middleware.Recover())
	httpadp.Register(e, services, httpadp.RouterConfig{
		Tokens:         auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL),
		Redis:          rdb,
		IdempotencyTTL: time.Duration(cfg.IdempTTLSecs) * time.Second,
		WebhookSecret:  cfg.WebhookSecret,
		DB:             sqlDB,
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Audit:          mysql.NewAuditRepository(gdb),
	})
	if cfg.WebhookSecret == "" {
		log.Println("WEBHOOK_SECRET not set, accepting unsigned mobile money webhooks")
	}

	addr := ":" + cfg.AppPort
	go func() {
		log.Printf("listening on %s", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
