// Package server contains the gin engine setup and route registration.
package server

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	// Load env
	_ "github.com/joho/godotenv/autoload"

	// Init swagger doc
	_ "mulita-backend/docs"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"mulita-backend/internal/controller/news"
	"mulita-backend/internal/middleware"
	"mulita-backend/internal/model"
	"mulita-backend/internal/repository"
)

// mutationRoles is the fixed allowed-role set for every write endpoint.
var mutationRoles = []string{model.RoleAdmin, model.RoleSuperAdmin}

// RegisterRoutes registers each http endpoint on a fresh engine.
func (s *Server) RegisterRoutes() http.Handler {
	r := gin.Default()

	allowOriginsStr := os.Getenv("ALLOW_ORIGIN")
	allowOrigins := strings.Split(allowOriginsStr, ",")

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(middleware.RequestID())

	newsController := news.NewNewsController(repository.NewNewsRepository(s.DB), s.Storage)

	r.GET("/health", s.healthHandler)

	v1 := r.Group("/api/v1")
	{
		noticias := v1.Group("/noticias")
		{
			// Read paths carry no gate.
			noticias.GET("", newsController.GetNews)
			noticias.GET("/:id", newsController.GetNewsByID)

			// Mutations resolve the credential and check the role before
			// any handler side effect.
			gated := noticias.Group("")
			gated.Use(middleware.RequireAuth(s.Identity), middleware.CheckRole(mutationRoles...))
			{
				gated.POST("", middleware.SizeLimit(10<<20), newsController.CreateNews)
				gated.PUT("/:id", middleware.SizeLimit(10<<20), newsController.UpdateNews)
				gated.DELETE("/:id", newsController.DeleteNews)
			}
		}
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.DB.Health())
}
