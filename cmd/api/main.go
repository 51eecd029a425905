package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/bellastudio/booking-api/internal/config"
	dbpkg "github.com/bellastudio/booking-api/internal/db"
	"github.com/bellastudio/booking-api/internal/logging"
	"github.com/bellastudio/booking-api/internal/routes"
)

func main() {

	cfg := config.Load()
	logging.Init(cfg.LogLevel)
	defer logging.Sync()

	db := dbpkg.NewDB(cfg)

	// redis is optional: without it the trust queue runs in-process
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterRoutes(r, db, rdb, cfg)

	logging.Log.Info("server running", zap.String("addr", cfg.Addr()))
	if err := r.Run(cfg.Addr()); err != nil {
		logging.Log.Fatal("failed to start server", zap.Error(err))
	}
}
