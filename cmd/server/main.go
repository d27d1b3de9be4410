// Package main implements the entry point for the chatlamix generation
// server, which orchestrates asynchronous AI media generation tasks and
// delivers their results to conversations.
package main

import (
	"context"
	"log"
)

// main loads configuration, wires the application, and runs the HTTP
// server until it receives a shutdown signal.
func main() {
	ctx := context.Background()

	app, err := initializeApp(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
