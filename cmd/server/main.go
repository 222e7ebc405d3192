package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hrassist-backend/internal/config"
	"hrassist-backend/internal/database"
	"hrassist-backend/internal/handlers"
	"hrassist-backend/internal/knowledge"
	"hrassist-backend/internal/router"
	"hrassist-backend/internal/services"
	"hrassist-backend/internal/websocket"
)

func main() {
	log.Println("🚀 Starting HR Assistant Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 3: Load Knowledge Document ────
	knowledgeText := knowledge.Load(cfg.KnowledgeDocPath)
	log.Printf("✓ Knowledge document loaded (%d chars)", len(knowledgeText))

	// ──── Step 4: Initialize Gemini Client ────
	assistantService, err := services.NewAssistantService(cfg, knowledgeText)
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer assistantService.Close()
	log.Println("✓ Gemini client initialized")

	// ──── Step 5: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.Publish, redisClients.PubSub, assistantService)
	log.Println("✓ WebSocket hub started")

	// ──── Step 6: Start HTTP Server ────
	chatHandler := handlers.NewChatHandler(assistantService)

	r := router.New(chatHandler, wsHub, cfg.ChatRequestsPerMin, cfg.FrontendURL)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ HR Assistant Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
