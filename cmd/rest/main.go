package main

import (
	"context"
	"log"

	"ai-webchat-be/internal/bootstrap"
	"ai-webchat-be/internal/config"
	"ai-webchat-be/internal/server"
	"ai-webchat-be/internal/tracer"
	"ai-webchat-be/pkg/database"
)

func main() {
	// 0. Tracing (no-op unless OTEL_ENABLED)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// 2. Initialize Database
	gormDB, err := database.NewGormDB(cfg.Database)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Bus.Close()

	// 4. Initialize Server
	srv := server.New(cfg, container)

	// 5. Run Server
	log.Fatal(srv.Run())
}
