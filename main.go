package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thitiph0n/second-brain-sub001/internal/store"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	gin.SetMode(cfg.GinMode)

	logger, err := newLogger(cfg.GinMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	pool, err := store.Connect(context.Background(), cfg.DBURL)
	if err != nil {
		logger.Fatal("unable to connect to database", zap.Error(err))
	}
	defer pool.Close()
	logger.Info("DB pool ready")

	db := store.New(pool, logger)
	h := newHandler(db, db.Users(), cfg, logger, time.Now)

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))
	if err := router.SetTrustedProxies(nil); err != nil {
		logger.Fatal("set trusted proxies", zap.Error(err))
	}
	h.registerRoutes(router)

	logger.Info("listening", zap.String("addr", cfg.addr()))
	if err := router.Run(cfg.addr()); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
