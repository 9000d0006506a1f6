package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tpaops/claimsgo/internal/clock"
	"github.com/tpaops/claimsgo/internal/config"
	"github.com/tpaops/claimsgo/internal/database"
	"github.com/tpaops/claimsgo/internal/handlers"
	"github.com/tpaops/claimsgo/internal/models"
	"github.com/tpaops/claimsgo/internal/services/audit"
	"github.com/tpaops/claimsgo/internal/services/docstream"
	"github.com/tpaops/claimsgo/internal/services/ingest"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Initialize database (detects embedded vs external automatically)
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	// Note: db.Close() is called manually in shutdown handler below

	// 3. Auto-migrate schema
	log.Println("🚀 Synchronizing database schema...")
	err = db.AutoMigrate(
		// Reference entities
		&models.Company{},
		&models.Beneficiary{},
		&models.Dependent{},
		&models.PolicyCard{},
		&models.ClaimType{},
		&models.ClaimStatus{},
		&models.DocumentType{},

		// Claims pipeline
		&models.Claim{},
		&models.ClaimEvent{},
		&models.ClaimDocument{},

		// Audit tables
		&models.IngestBatch{},
		&models.DocumentAccessLog{},
	)
	if err != nil {
		log.Printf("⚠️ Migration warning: %v\n", err)
	} else {
		log.Println("✅ Schema synchronized successfully")
	}

	// 4. Wire services
	clk := clock.System()
	ingestSvc := ingest.NewService(db, clk, cfg.Ingest)
	streamer := docstream.NewStreamer(db, cfg.Storage, clk)
	auditSvc := audit.NewService(db)

	router := handlers.NewRouter(db, cfg, ingestSvc, streamer, auditSvc)

	// 5. Start server with graceful shutdown
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		log.Printf("🚀 Claims pipeline server starting on port %s\n", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	sig := <-shutdown
	log.Printf("\n⚠️  Received signal: %v. Shutting down gracefully...\n", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	// Close database (this also stops embedded PostgreSQL)
	log.Println("🛑 Closing database connection...")
	if err := db.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}
