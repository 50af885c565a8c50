package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"skincarechat/internal/ai"
	"skincarechat/internal/chat"
	"skincarechat/internal/config"
	"skincarechat/internal/logging"
	"skincarechat/internal/msgfmt"
)

const clientIDKey = "clientID"

type App struct {
	cfg       config.Config
	chat      *chat.Service
	ai        ai.Client
	formatter *msgfmt.Formatter
	log       zerolog.Logger
	now       func() time.Time
}

func New(cfg config.Config, svc *chat.Service, client ai.Client, log zerolog.Logger) *App {
	return &App{
		cfg:       cfg,
		chat:      svc,
		ai:        client,
		formatter: msgfmt.New(log),
		log:       log,
		now:       time.Now,
	}
}

func (a *App) Router() *gin.Engine {
	router := gin.New()
	router.Use(logging.Middleware(a.log), gin.Recovery())
	router.Use(cors.New(a.corsConfig()))

	router.GET("/health", a.health)
	router.POST("/api/openai", a.openAIProxy)
	router.OPTIONS("/api/openai", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	public := router.Group(a.cfg.APIPrefix)
	public.POST("/sessions", a.createSession)
	public.POST("/format", a.formatMessage)

	api := router.Group(a.cfg.APIPrefix)
	api.Use(a.authMiddleware())

	api.GET("/products", a.listProducts)
	api.GET("/categories", a.listCategories)
	api.GET("/selections", a.listSelections)
	api.POST("/selections/:product_id/toggle", a.toggleSelection)
	api.DELETE("/selections/:product_id", a.removeSelection)
	api.GET("/chat/greeting", a.chatGreeting)
	api.GET("/chat/messages", a.chatHistory)
	api.POST("/chat/messages", a.sendChatMessage)
	api.DELETE("/chat/messages", a.clearChatHistory)
	api.POST("/chat/routine", a.generateRoutine)
	api.GET("/preferences", a.getPreferences)
	api.PATCH("/preferences", a.updatePreferences)

	return router
}

func (a *App) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	origins := make([]string, 0, len(a.cfg.CORSAllowOrigins))
	for _, origin := range a.cfg.CORSAllowOrigins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
		origins = append(origins, origin)
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func (a *App) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "skincare-chat-api",
		"products": a.chat.Catalog().Len(),
	})
}

func (a *App) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
			writeError(c, http.StatusUnauthorized, "Bearer token required")
			return
		}
		tokenString := strings.TrimSpace(authHeader[len("Bearer "):])
		if tokenString == "" {
			writeError(c, http.StatusUnauthorized, "Bearer token required")
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if token.Method == nil || token.Method.Alg() != a.cfg.JWTAlgorithm {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(a.cfg.JWTSecret), nil
		}, jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			writeError(c, http.StatusUnauthorized, "Invalid bearer token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			writeError(c, http.StatusUnauthorized, "Invalid token payload")
			return
		}
		sub, _ := claims["sub"].(string)
		sub = strings.TrimSpace(sub)
		if sub == "" {
			writeError(c, http.StatusUnauthorized, "Token subject missing")
			return
		}

		c.Set(clientIDKey, sub)
		c.Next()
	}
}

// issueClientToken signs an anonymous client identity.
func (a *App) issueClientToken(clientID string) (string, time.Time, error) {
	now := a.now().UTC()
	ttl := time.Duration(a.cfg.ClientTokenTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 720 * time.Hour
	}
	expiresAt := now.Add(ttl)

	method := jwt.GetSigningMethod(a.cfg.JWTAlgorithm)
	if method == nil {
		return "", time.Time{}, fmt.Errorf("unsupported JWT_ALGORITHM %q", a.cfg.JWTAlgorithm)
	}
	token := jwt.NewWithClaims(method, jwt.MapClaims{
		"sub": clientID,
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
		"jti": uuid.NewString(),
	})
	signed, err := token.SignedString([]byte(a.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (a *App) session(c *gin.Context) *chat.Session {
	return a.chat.Session(c.GetString(clientIDKey))
}

func writeError(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

// writeInternal logs err and answers with a generic 500.
func (a *App) writeInternal(c *gin.Context, err error, detail string) {
	a.log.Error().Err(err).Str("path", c.FullPath()).Msg(detail)
	_ = c.Error(err)
	writeError(c, http.StatusInternalServerError, detail)
}

func mustJSON(c *gin.Context, payload any) bool {
	if err := c.ShouldBindJSON(payload); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}

func isClientError(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
