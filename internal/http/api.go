package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"iron-coder/internal/domain"
	"iron-coder/internal/service"
)

const claimsKey = "claims"

// Handler wires HTTP routes to the credential service.
type Handler struct {
	users  service.UserService
	tokens *TokenIssuer
	logger logrus.FieldLogger
}

func NewHandler(users service.UserService, tokens *TokenIssuer, logger logrus.FieldLogger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		api.POST("/auth/register", h.register)
		api.POST("/auth/login", h.login)
		api.POST("/auth/guest", h.guest)
		api.POST("/navigate", h.optionalAuth(), h.navigate)
		api.GET("/me", h.requireAuth(), h.me)
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type navigateRequest struct {
	From string `json:"from" binding:"required"`
	To   string `json:"to" binding:"required"`
}

// PageResponse tells the client which page to show next and what to display.
type PageResponse struct {
	Page    domain.Page `json:"page"`
	Message string      `json:"message,omitempty"`
	Token   string      `json:"token,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, PageResponse{Page: domain.PageRegister, Error: err.Error()})
		return
	}

	_, err := h.users.Register(c.Request.Context(), req.Username, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrDuplicateUsername):
		c.JSON(http.StatusConflict, PageResponse{Page: domain.PageRegister, Error: err.Error()})
		return
	case errors.Is(err, service.ErrInvalidUsername), errors.Is(err, service.ErrInvalidPassword):
		c.JSON(http.StatusBadRequest, PageResponse{Page: domain.PageRegister, Error: err.Error()})
		return
	default:
		h.logger.WithError(err).Error("register failed")
		c.JSON(http.StatusInternalServerError, PageResponse{Page: domain.PageRegister, Error: "could not create account: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, PageResponse{Page: domain.PageLogin, Message: "Account created, please log in"})
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, PageResponse{Page: domain.PageLogin, Error: err.Error()})
		return
	}

	ok, err := h.users.Verify(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.WithError(err).Error("verify failed")
		c.JSON(http.StatusInternalServerError, PageResponse{Page: domain.PageLogin, Error: "could not check credentials: " + err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, PageResponse{Page: domain.PageLogin, Error: "Invalid username or password"})
		return
	}

	h.issue(c, req.Username, false, "Welcome back, "+req.Username)
}

func (h *Handler) guest(c *gin.Context) {
	h.issue(c, guestSubject(), true, "Continuing as a guest")
}

func (h *Handler) issue(c *gin.Context, subject string, guest bool, message string) {
	token, err := h.tokens.Issue(subject, guest)
	if err != nil {
		h.logger.WithError(err).Error("issue token failed")
		c.JSON(http.StatusInternalServerError, PageResponse{Page: domain.PageLogin, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, PageResponse{Page: domain.PageHome, Token: token, Message: message})
}

func (h *Handler) navigate(c *gin.Context) {
	var req navigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	from, err := domain.ParsePage(req.From)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	to, err := domain.ParsePage(req.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// home and about are only reachable with a session
	if (to == domain.PageHome || to == domain.PageAbout) && claimsFrom(c) == nil {
		c.JSON(http.StatusUnauthorized, PageResponse{Page: from, Error: "log in or continue as a guest first"})
		return
	}

	next, err := from.Navigate(to)
	if err != nil {
		c.JSON(http.StatusConflict, PageResponse{Page: from, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, PageResponse{Page: next})
}

func (h *Handler) me(c *gin.Context) {
	claims := claimsFrom(c)
	c.JSON(http.StatusOK, gin.H{
		"username": claims.Subject,
		"guest":    claims.Guest,
	})
}

func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := h.bearerClaims(c)
		if err != nil || claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// optionalAuth attaches claims when a valid token is present but never rejects.
func (h *Handler) optionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := h.bearerClaims(c); err == nil && claims != nil {
			c.Set(claimsKey, claims)
		}
		c.Next()
	}
}

func (h *Handler) bearerClaims(c *gin.Context) (*Claims, error) {
	header := c.GetHeader("Authorization")
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	return h.tokens.Parse(strings.TrimSpace(raw))
}

func claimsFrom(c *gin.Context) *Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*Claims)
	return claims
}
