package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/walletgate/siwn/core"
	"github.com/walletgate/siwn/internal/neo"
	"github.com/walletgate/siwn/service"
)

// AuthHandlers contains HTTP handlers for the SIWN endpoints
type AuthHandlers struct {
	authService *service.AuthService
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authService *service.AuthService) *AuthHandlers {
	return &AuthHandlers{authService: authService}
}

// Nonce handles the challenge nonce request
func (h *AuthHandlers) Nonce(c *gin.Context) {
	address := c.Query("address")
	if address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Address is required"})
		return
	}

	nonce, err := h.authService.IssueNonce(c.Request.Context(), address)
	if err != nil {
		log.Printf("siwn: nonce issuance failed for %s: %v", address, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue nonce"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"nonce": nonce})
}

// Login handles the login request
func (h *AuthHandlers) Login(c *gin.Context) {
	var req struct {
		Message   string `json:"message" binding:"required"`
		Signature string `json:"signature" binding:"required"`
		PublicKey string `json:"publicKey" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	identity, session, err := h.authService.Login(c.Request.Context(), req.Message, req.Signature, req.PublicKey)
	if err != nil {
		// Full detail stays server-side; the client sees a short message and,
		// for signature/nonce/temporal failures, a deliberately uniform one.
		log.Printf("siwn: login rejected: %v", err)
		status, msg := loginErrorResponse(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":    identity,
		"session": session,
	})
}

// loginErrorResponse maps pipeline errors to a status code and a
// non-revealing client message.
func loginErrorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrMalformedMessage):
		return http.StatusBadRequest, "Invalid challenge message"
	case errors.Is(err, core.ErrDomainRejected), errors.Is(err, core.ErrDomainMismatch):
		return http.StatusBadRequest, "Domain not allowed"
	case errors.Is(err, neo.ErrInvalidPublicKey), errors.Is(err, core.ErrKeyAddressMismatch):
		return http.StatusBadRequest, "Public key does not match address"
	case errors.Is(err, core.ErrInvalidSignature),
		errors.Is(err, core.ErrInvalidOrExpiredNonce),
		errors.Is(err, core.ErrNonceMismatch),
		errors.Is(err, core.ErrMessageExpired),
		errors.Is(err, core.ErrIssuedInFuture):
		// Uniform message: the network boundary must not distinguish a bad
		// signature from a replayed nonce or a stale challenge.
		return http.StatusUnauthorized, "Authentication failed"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// Me returns information about the authenticated user
func (h *AuthHandlers) Me(c *gin.Context) {
	principal, exists := c.Get("principal")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User not found in context"})
		return
	}
	p := principal.(*core.Principal)

	c.JSON(http.StatusOK, gin.H{
		"id":      p.AccountID,
		"address": p.Address,
	})
}
