package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"pos-service/internal/config"
	controllers "pos-service/internal/controllers/http"
	"pos-service/internal/infra"
	mmysql "pos-service/internal/infra/mysql"
	"pos-service/internal/infra/rabbitmq"
	mysqlrepo "pos-service/internal/repository/mysql"
	"pos-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}

	db, err := mmysql.New(cfg)
	if err != nil {
		logrus.Fatalf("db: connect: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		logrus.Fatalf("db: handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	orderRepo := mysqlrepo.NewOrderRepository(db)
	tableRepo := mysqlrepo.NewTableRepository(db)
	paymentRepo := mysqlrepo.NewPaymentRepository(db)
	userRepo := mysqlrepo.NewUserRepository(db)

	menuClient := infra.NewMenuClient(cfg.MenuServiceURL, 2*time.Second)
	processorClient := infra.NewProcessorClient(cfg.PaymentProcessorURL, 5*time.Second)

	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL, "pos.events")
	if err != nil {
		logrus.Fatalf("failed to init publisher: %v", err)
	}
	defer publisher.Close()

	orderSvc := services.NewOrderService(orderRepo, menuClient, publisher, services.OrderConfig{
		TaxRate:     cfg.TaxRate,
		PrepBase:    time.Duration(cfg.PrepBaseMinutes) * time.Minute,
		PrepPerItem: time.Duration(cfg.PrepPerItemMinutes) * time.Minute,
	})
	tableSvc := services.NewTableService(tableRepo)
	paymentSvc := services.NewPaymentService(paymentRepo, orderRepo, processorClient)
	authSvc := services.NewAuthService(userRepo, []byte(cfg.JWTSecret), time.Duration(cfg.TokenTTLHours)*time.Hour)

	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		DB:           0,
		PoolSize:     100,
		MinIdleConns: 10,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
	orderSvc.SetRedisClient(redisClient)

	if len(cfg.MenuWarmupIDs) > 0 {
		go orderSvc.WarmupMenuCache(context.Background(), cfg.MenuWarmupIDs)
	}

	handler := controllers.NewHandler(orderSvc, tableSvc, paymentSvc, authSvc, menuClient, redisClient)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logrus.WithField("port", cfg.Port).Info("starting pos service")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logrus.Fatalf("server: %v", err)
	}
	logrus.Info("shut down cleanly")
}
