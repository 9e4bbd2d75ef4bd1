package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"employeedir/internal/app/server"
	"employeedir/internal/lib/logger/sl"
	"employeedir/internal/platform/config"
	"employeedir/internal/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logg := logger.New(cfg.Environment, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := server.New(ctx, cfg, logg)
	if err != nil {
		logg.Error("startup failed", sl.Err(err))
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		logg.Error("server stopped", sl.Err(err))
		os.Exit(1)
	}
	logg.Info("server stopped gracefully")
}
