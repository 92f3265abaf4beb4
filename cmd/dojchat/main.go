package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"doj-chatbot-client/internal/bootstrap"
	"doj-chatbot-client/internal/cli"
	"doj-chatbot-client/internal/config"
	"doj-chatbot-client/internal/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load()

	// File only: the terminal belongs to the conversation.
	sysLogger := logger.NewIsolatedLogger(cfg.App.LogFilePath)

	container, err := bootstrap.NewContainer(cfg, sysLogger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dojchat: %v\n", err)
		return 1
	}
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return cli.New(container, os.Stdin, os.Stdout).Run(ctx, os.Args[1:])
}
