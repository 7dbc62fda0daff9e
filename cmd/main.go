package main

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/tummytime/canteen/cache"
	"github.com/tummytime/canteen/config"
	"github.com/tummytime/canteen/database"
	"github.com/tummytime/canteen/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	config.Init()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	if err := database.ConnectAndMigrate(); err != nil {
		logrus.Panicf("failed to initialize database, error: %v", err)
	}
	logrus.Println("migration is successful")

	if addr := config.Get("REDIS_ADDR", ""); addr != "" {
		if err := cache.Connect(addr); err != nil {
			logrus.WithError(err).Warn("redis unavailable, continuing without cache")
		}
	}

	svr := server.SetupRoutes()
	go func() {
		port := config.Get("PORT", ":8080")
		logrus.Infof("listening on %s", port)
		if err := svr.Run(port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Panic("server stopped unexpectedly")
		}
	}()

	<-done

	logrus.Info("shutting down...")
	var shutdownErr error
	if err := svr.Shutdown(shutdownTimeout); err != nil {
		shutdownErr = multierror.Append(shutdownErr, err)
	}
	if err := database.ShutdownDatabase(); err != nil {
		shutdownErr = multierror.Append(shutdownErr, err)
	}
	if err := cache.Close(); err != nil {
		shutdownErr = multierror.Append(shutdownErr, err)
	}
	if shutdownErr != nil {
		logrus.WithError(shutdownErr).Error("failed to shut down cleanly")
	}

	logrus.Info("system is shut ..zzz")
}
