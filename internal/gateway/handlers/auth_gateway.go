package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"atelier-crm/internal/logger"
	"atelier-crm/internal/services/crm/handler"
	"atelier-crm/internal/utils"
)

type AuthHTTPHandler struct {
	store  *handler.CRMHandler
	tokens *utils.TokenManager
	log    *logger.Logger
}

func NewAuthHTTPHandler(store *handler.CRMHandler, tokens *utils.TokenManager, baseLog *logger.Logger) *AuthHTTPHandler {
	return &AuthHTTPHandler{
		store:  store,
		tokens: tokens,
		log:    baseLog.With("handler", "auth"),
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

func (h *AuthHTTPHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	user, err := h.store.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, handler.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, errorResponse("Invalid username or password"))
			return
		}
		respondError(c, h.log, err)
		return
	}

	token, expiresAt, err := h.tokens.Generate(user.ID, user.Username)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Login successful", gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	}))
}

func (h *AuthHTTPHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	user, err := h.store.RegisterUser(c.Request.Context(), handler.RegisterParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("User registered", gin.H{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	}))
}
