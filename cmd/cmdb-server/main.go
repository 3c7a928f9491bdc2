// Package main provides the CMDB server entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/golang/glog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/opsforge/cmdb/pkg/inventory"
	"github.com/opsforge/cmdb/pkg/server"
	"github.com/opsforge/cmdb/pkg/session"
)

func main() {
	var (
		listenAddr   string
		databaseType string
		databaseDSN  string
	)

	flag.StringVar(&listenAddr, "listen", ":8080", "Address to listen on")
	flag.StringVar(&databaseType, "db-type", "", "Database type (sqlite, mysql, or postgres)")
	flag.StringVar(&databaseDSN, "db-dsn", "", "Database connection string")
	flag.Parse()

	// Initialize glog for backwards compatibility
	_ = flag.Set("logtostderr", "true")

	// Set up structured logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	db, err := setupDatabase(databaseType, databaseDSN)
	if err != nil {
		glog.Fatalf("Failed to connect to database: %v", err)
	}

	store := inventory.NewStore(db)
	if err := store.AutoMigrate(); err != nil {
		glog.Fatalf("Failed to migrate database: %v", err)
	}

	sessions := session.ConfigFromEnv()

	router, err := server.New(store, sessions, logger)
	if err != nil {
		glog.Fatalf("Failed to build router: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	httpServer := &http.Server{
		Addr:    listenAddr,
		Handler: router,
	}

	logger.Info("cmdb server ready", "listen", listenAddr)

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			glog.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("cmdb server stopped")
}

// setupDatabase opens the configured backend. TranslateError is required so
// late unique-constraint violations surface as gorm.ErrDuplicatedKey and the
// store can report them as conflicts.
func setupDatabase(dbType, dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = os.Getenv("DATABASE_DSN")
		if dsn == "" {
			dsn = "cmdb.db"
		}
	}
	if dbType == "" {
		dbType = os.Getenv("DATABASE_TYPE")
		if dbType == "" {
			dbType = "sqlite"
		}
	}

	cfg := &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	}

	switch dbType {
	case "sqlite":
		return gorm.Open(sqlite.Open(dsn), cfg)
	case "mysql":
		return gorm.Open(mysql.Open(dsn), cfg)
	case "postgres":
		return gorm.Open(postgres.Open(dsn), cfg)
	default:
		return nil, fmt.Errorf("unsupported database type %q (expected sqlite, mysql, or postgres)", dbType)
	}
}
