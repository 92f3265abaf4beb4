package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"doj-chatbot-client/internal/bootstrap"
	"doj-chatbot-client/internal/config"
	"doj-chatbot-client/internal/pkg/logger"
	"doj-chatbot-client/internal/server"
	"doj-chatbot-client/internal/tracer"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())

	// 2. Tracing (off unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer(sysLogger)
	defer shutdownTracer(context.Background())

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(cfg, sysLogger)
	if err != nil {
		log.Fatalf("Unable to start: %v", err)
	}
	defer container.Close()

	// 4. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		sysLogger.Info("Server", "Shutting down", nil)
		if err := srv.Shutdown(); err != nil {
			sysLogger.Error("Server", "Shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// 5. Run Server
	if err := srv.Run(); err != nil {
		sysLogger.Error("Server", "Server stopped", map[string]interface{}{"error": err.Error()})
	}
}
