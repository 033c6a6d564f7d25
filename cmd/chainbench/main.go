package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"chainbench/internal/config"
	"chainbench/internal/logging"

	"github.com/joho/godotenv"
	"k8s.io/utils/clock"
)

func main() {
	// A missing .env is normal; the environment is used as-is.
	_ = godotenv.Load()

	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

func execute(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	logger, err := logging.New(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logging: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := &App{
		Config: cfg,
		Logger: logger,
		Clock:  clock.RealClock{},
		Stdout: stdout,
		Stderr: stderr,
	}
	return app.Run(ctx, args)
}
