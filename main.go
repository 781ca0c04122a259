package main

import (
	"context"
	"fmt"
	"time"

	"github.com/annazecevic/catalog-service/config"
	"github.com/annazecevic/catalog-service/handler"
	"github.com/annazecevic/catalog-service/logger"
	"github.com/annazecevic/catalog-service/repository"
	"github.com/annazecevic/catalog-service/service"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {

	cfg := config.LoadConfig()

	logger.Init(logger.Config{
		ServiceName: "catalog-service",
		Environment: cfg.Environment,
		LogFilePath: cfg.LogFilePath,
		HMACKey:     cfg.LogHMACKey,
		MaxSizeMB:   cfg.LogMaxSizeMB,
		MaxBackups:  cfg.LogMaxBackups,
		MaxAgeDays:  cfg.LogMaxAgeDays,
	})

	logger.Info(logger.EventServiceStartup, "Catalog service starting", logger.Fields(
		"port", cfg.ServerPort,
		"environment", cfg.Environment,
		"store", cfg.StoreDriver,
	))

	storeOpts := repository.Options{
		Timeout:          cfg.StoreTimeout,
		UniqueGenreNames: cfg.GenreUniqueIndex,
	}

	var catalog *repository.Catalog
	if cfg.StoreDriver == "memory" {
		catalog = repository.NewMemoryCatalog(storeOpts)
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		clientOpts := options.Client().ApplyURI(cfg.MongoURI)
		client, err := mongo.Connect(ctx, clientOpts)
		if err != nil {
			logger.Fatal(logger.EventDBError, "Failed to connect to MongoDB", logger.Fields("error", err.Error()))
		}

		if err := client.Ping(ctx, nil); err != nil {
			logger.Fatal(logger.EventDBError, "Failed to ping MongoDB", logger.Fields("error", err.Error()))
		}

		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Error(logger.EventDBError, "Error disconnecting from MongoDB", logger.Fields("error", err.Error()))
			}
		}()

		logger.Info(logger.EventDBConnection, "Connected to MongoDB successfully", logger.Fields(
			"database", cfg.MongoDatabase,
		))

		catalog = repository.NewMongoCatalog(client.Database(cfg.MongoDatabase), storeOpts)
	}

	catalogService := service.NewCatalogService(catalog)
	userService := service.NewUserService(catalog.Users)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handler.NewRouter(cfg, catalogService, userService)

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	logger.Info(logger.EventServiceStartup, "Server starting", logger.Fields("address", addr))
	if err := router.Run(addr); err != nil {
		logger.Fatal(logger.EventGeneral, "Failed to start server", logger.Fields("error", err.Error()))
	}
}
