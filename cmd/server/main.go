// Package main implements the entry point for the JurisAI API server,
// which accepts legal analysis tasks and tracks their progress through
// a background execution pipeline.
package main

import (
	"context"
	"log"
)

func main() {
	ctx := context.Background()

	app, err := newApplication(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.start(ctx); err != nil {
		app.cleanup()
		log.Fatalf("Failed to start application: %v", err)
	}

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
