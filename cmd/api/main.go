// Command api runs the news backend HTTP server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mulita-backend/internal/auth"
	"mulita-backend/internal/database"
	"mulita-backend/internal/server"
	"mulita-backend/internal/storage"
)

func main() {
	ctx := context.Background()

	db, err := database.NewDBInstance(database.ConfigFromEnv())
	if err != nil {
		log.Fatalf("Database failed to initialize: %s", err)
	}

	store, err := storage.NewCloudStorageClient(ctx, "")
	if err != nil {
		log.Fatalf("Storage client failed to initialize: %s", err)
	}

	identity := auth.NewIdentityClient()

	srv := server.New(db, store, identity).HTTPServer()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %s", err)
		}
	}()
	log.Printf("Listening on %s", srv.Addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown failed: %s", err)
	}

	if err := store.Close(); err != nil {
		log.Printf("Failed to close storage client: %s", err)
	}
	if err := db.Close(); err != nil {
		log.Printf("Failed to close database: %s", err)
	}
}
