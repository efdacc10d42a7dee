package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/akolanti/CommunityRAG/internal/cli"
	"github.com/akolanti/CommunityRAG/internal/config"
)

func main() {
	if err := config.Load(); err != nil {
		println("could not read .env:", err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
