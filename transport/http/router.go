package http

import (
	"github.com/gin-gonic/gin"

	"github.com/walletgate/siwn/ports"
	"github.com/walletgate/siwn/service"
)

// SetupRouter sets up the Gin router. verifier may be nil, in which case the
// protected API group is not mounted.
func SetupRouter(authService *service.AuthService, verifier ports.TokenVerifier) *gin.Engine {
	router := gin.Default()

	handlers := NewAuthHandlers(authService)

	auth := router.Group("/auth")
	{
		auth.GET("/nonce", handlers.Nonce)
		auth.POST("/login", handlers.Login)
	}

	if verifier != nil {
		api := router.Group("/api")
		api.Use(AuthMiddleware(verifier))
		{
			api.GET("/me", handlers.Me)
		}
	}

	return router
}
