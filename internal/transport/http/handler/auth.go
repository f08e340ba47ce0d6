package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ErlanBelekov/travel-ease/internal/domain"
	"github.com/ErlanBelekov/travel-ease/internal/identity"
	"github.com/ErlanBelekov/travel-ease/internal/usecase"
	"github.com/gin-gonic/gin"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Register(ctx context.Context, input usecase.RegisterInput) (*usecase.AuthResult, error)
	Login(ctx context.Context, email, password string) (*usecase.AuthResult, error)
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
}

type AuthHandler struct {
	authUsecase authUsecaser
	logger      *slog.Logger
}

func NewAuthHandler(authUsecase authUsecaser, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		logger:      logger.With("component", "auth_handler"),
	}
}

type createAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userSummary struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type authResponse struct {
	Error       bool        `json:"error"`
	User        userSummary `json:"user"`
	AccessToken string      `json:"accessToken"`
	Message     string      `json:"message"`
}

type profileResponse struct {
	ID        string    `json:"_id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	CreatedOn time.Time `json:"createdOn"`
}

func newAuthResponse(res *usecase.AuthResult, message string) authResponse {
	return authResponse{
		User:        userSummary{FullName: res.User.FullName, Email: res.User.Email},
		AccessToken: res.AccessToken,
		Message:     message,
	}
}

// POST /create-account
func (h *AuthHandler) CreateAccount(c *gin.Context) {
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithMessage(c, http.StatusBadRequest, errInvalidBody)
		return
	}

	res, err := h.authUsecase.Register(c.Request.Context(), usecase.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, h.logger, "create account", err)
		return
	}

	c.JSON(http.StatusCreated, newAuthResponse(res, "Registration Successful"))
}

// POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithMessage(c, http.StatusBadRequest, errInvalidBody)
		return
	}

	res, err := h.authUsecase.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, "login", err)
		return
	}

	c.JSON(http.StatusOK, newAuthResponse(res, "Login Successful"))
}

// GET /get-user
func (h *AuthHandler) GetUser(c *gin.Context) {
	userID, ok := identity.UserID(c.Request.Context())
	if !ok {
		abortWithMessage(c, http.StatusUnauthorized, errUnauthorized)
		return
	}

	user, err := h.authUsecase.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, "get user", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": profileResponse{
			ID:        user.ID,
			FullName:  user.FullName,
			Email:     user.Email,
			CreatedOn: user.CreatedOn,
		},
		"message": "",
	})
}
