package server

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	// Load env file into environments.
	_ "github.com/joho/godotenv/autoload"

	"mulita-backend/internal/auth"
	"mulita-backend/internal/controller/news"
	"mulita-backend/internal/database"
)

// Server holds the process-wide handles every route needs. They are created
// once in main and injected here; nothing in this package reaches for
// ambient singletons.
type Server struct {
	DB       *database.DBinstanceStruct
	Storage  news.StorageClient
	Identity *auth.IdentityClient
}

// New constructs a Server around the injected collaborators.
func New(db *database.DBinstanceStruct, store news.StorageClient, identity *auth.IdentityClient) *Server {
	return &Server{
		DB:       db,
		Storage:  store,
		Identity: identity,
	}
}

// HTTPServer wraps the registered routes in an http.Server listening on PORT.
func (s *Server) HTTPServer() *http.Server {
	port, _ := strconv.Atoi(os.Getenv("PORT"))

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}
