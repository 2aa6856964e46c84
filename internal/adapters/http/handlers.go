package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/taskito/core/internal/application/services"
	"github.com/taskito/core/internal/infrastructure/logger"
	"github.com/taskito/core/internal/ports"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService *services.AuthService
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// SignUp handles account creation
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req ports.SignUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	response, err := h.authService.SignUp(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Sign-up failed", "error", err, "email", req.Email)
		if strings.Contains(err.Error(), "already exists") {
			return echo.NewHTTPError(http.StatusConflict, "Email already registered")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusCreated, response)
}

// SignIn handles user sign-in
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req ports.SignInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	response, err := h.authService.SignIn(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Sign-in failed", "error", err, "email", req.Email)
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	return c.JSON(http.StatusOK, response)
}

// SignOut revokes the presented session token
func (h *AuthHandler) SignOut(c echo.Context) error {
	token := getTokenFromContext(c)
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
	}

	if err := h.authService.SignOut(c.Request().Context(), token); err != nil {
		h.logger.Error("Sign-out failed", "error", err, "user_id", getUserIDFromContext(c))
		return echo.NewHTTPError(http.StatusInternalServerError, "Sign-out failed")
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Signed out successfully"})
}

// UpdatePassword changes the account password
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req ports.UpdatePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authService.UpdatePassword(c.Request().Context(), userID, req); err != nil {
		h.logger.Error("Password update failed", "error", err, "user_id", userID)
		if strings.Contains(err.Error(), "incorrect") {
			return echo.NewHTTPError(http.StatusUnauthorized, "Current password is incorrect")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Password updated"})
}

// Session returns the claims of the presented token
func (h *AuthHandler) Session(c echo.Context) error {
	return c.JSON(http.StatusOK, ports.Claims{
		UserID: getUserIDFromContext(c),
		Email:  getEmailFromContext(c),
	})
}

// Utility functions and helper types

func getUserIDFromContext(c echo.Context) string {
	if id, ok := c.Get("user").(string); ok {
		return id
	}
	return ""
}

func getEmailFromContext(c echo.Context) string {
	if email, ok := c.Get("user_email").(string); ok {
		return email
	}
	return ""
}

func getTokenFromContext(c echo.Context) string {
	if token, ok := c.Get("token").(string); ok {
		return token
	}
	return ""
}

// Request/Response types
type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
