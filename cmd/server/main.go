// ABOUTME: Main entry point for the Olympus MCP server with stdio transport
// ABOUTME: Opens the profile and plan store and serves the plan tools to agents
package main

import (
	"log"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/olympus/internal/config"
	"github.com/harper/olympus/internal/llm"
	"github.com/harper/olympus/internal/logging"
	"github.com/harper/olympus/internal/mcp"
	"github.com/harper/olympus/internal/storage"
)

var version = "dev"

func main() {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// stdout carries the protocol, so logs only go to the file unless debugging
	if err := logging.Init(logging.Config{Debug: cfg.Debug, LogDir: cfg.LogDir()}); err != nil {
		log.Printf("Warning: file logging disabled: %v", err)
	}

	store, err := storage.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer func() { _ = store.Close() }()

	var planner mcp.Planner
	if cfg.OpenAIKey != "" {
		generator, err := llm.NewGeneratorWithConfig(&llm.ClientConfig{
			APIKey:    cfg.OpenAIKey,
			ChatModel: cfg.ChatModel,
			Timeout:   cfg.Timeout,
		})
		if err != nil {
			log.Printf("Warning: plan generation disabled: %v", err)
		} else {
			planner = generator
		}
	} else {
		log.Println("Warning: OPENAI_API_KEY not set - generate_plan will not be offered")
	}

	server := mcpserver.NewMCPServer("Olympus Longevity Protocol", version)
	mcp.RegisterTools(server, store, planner)

	log.Println("Olympus MCP server starting on stdio...")
	if err := mcpserver.ServeStdio(server); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
