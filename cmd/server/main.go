package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"memoria-server/internal/config"
	"memoria-server/internal/handler"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	// Wiring
	container, err := config.NewContainer()
	if err != nil {
		log.Fatalf("Failed to build dependency container: %v", err)
	}
	logger := container.GetLogger()

	// Router
	router := handler.NewRouterFromContainer(container)

	// start server
	server := &http.Server{
		Addr:    ":" + container.GetConfig().GetServerPort(),
		Handler: router,
	}

	// Run server
	go func() {
		logger.Info("Server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to start", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	_ = server.Close()

	logger.Info("Server exited")
}
