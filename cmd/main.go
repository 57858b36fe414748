package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/12344-munna/order-handler/internal/command"
	"github.com/12344-munna/order-handler/internal/events"
	"github.com/12344-munna/order-handler/internal/handler"
	"github.com/12344-munna/order-handler/internal/messenger"
	"github.com/12344-munna/order-handler/internal/repository"
	"github.com/12344-munna/order-handler/internal/service"
	"github.com/12344-munna/order-handler/pkg/config"
	"github.com/12344-munna/order-handler/pkg/middleware"
	pkgtls "github.com/12344-munna/order-handler/pkg/tls"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	dynamoClient, err := repository.NewDynamoDBClient(cfg)
	if err != nil {
		log.Fatal("Failed to create DynamoDB client:", err)
	}

	productRepo := repository.NewProductRepository(dynamoClient, cfg.ProductTableName)
	orderRepo := repository.NewOrderRepository(dynamoClient, cfg.OrderTableName, cfg.ProductTableName)

	orderService := service.NewOrderService(productRepo, orderRepo, logger)
	catalogService := service.NewCatalogService(productRepo, logger)

	var producer *events.KafkaProducer
	if cfg.KafkaBrokers != "" {
		producer = events.NewKafkaProducer(cfg.KafkaBrokers, logger)
		orderService.SetEventPublisher(producer)
	}

	notifier := messenger.NewClient(cfg.GraphAPIBase, cfg.PageAccessToken, logger)
	cmdRouter := command.NewRouter(orderService, catalogService, notifier, cfg.AdminPSID, logger)

	webhookHandler := handler.NewWebhookHandler(cmdRouter, cfg.VerifyToken, logger)
	productHandler := handler.NewProductHandler(catalogService, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.HandleMethodNotAllowed = true

	router.GET("/webhook", webhookHandler.Verify)
	router.POST("/webhook", webhookHandler.Receive)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/products", productHandler.CreateProduct)
		v1.GET("/products/:code", productHandler.GetProduct)
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "healthy"})
		})
	}

	tlsConfig, err := pkgtls.LoadTLSConfig(&cfg.TLS, logger)
	if err != nil {
		log.Fatal("Failed to load TLS config:", err)
	}
	defer pkgtls.Cleanup()

	srv := &http.Server{
		Addr:      ":" + cfg.Port,
		Handler:   router,
		TLSConfig: tlsConfig,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Port))
		var err error
		if tlsConfig != nil {
			err = srv.ListenAndServeTLS("", "")
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("Failed to close Kafka producer", zap.Error(err))
		}
	}

	logger.Info("Server exited")
}
