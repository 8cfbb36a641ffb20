package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Wang-tianhao/vibrant-blog-go/internal/logger"
	"github.com/Wang-tianhao/vibrant-blog-go/internal/store"
	"github.com/Wang-tianhao/vibrant-blog-go/jwtauth"
)

// Store is the persistence the HTTP API needs
type Store interface {
	CreateUser(ctx context.Context, email, password string) (*store.User, error)
	UserByID(ctx context.Context, id int64) (*store.User, error)
	Authenticate(ctx context.Context, email, password string) (*store.User, error)
	CreatePost(ctx context.Context, ownerID int64, in store.PostInput) (*store.Post, error)
	GetPost(ctx context.Context, id int64) (*store.Post, error)
	ListPosts(ctx context.Context, opts store.ListOptions) ([]store.Post, error)
	UpdatePost(ctx context.Context, id, userID int64, in store.PostInput) (*store.Post, error)
	DeletePost(ctx context.Context, id, userID int64) error
}

// Config wires the HTTP API
type Config struct {
	Store              Store
	Guard              *jwtauth.Guard[store.User]
	Logger             *slog.Logger
	CORSOrigins        []string
	TrustedProxies     []string
	LoginRatePerMinute int
	LoginBurst         int
}

// Server is the blog REST API
type Server struct {
	router  *gin.Engine
	store   Store
	guard   *jwtauth.Guard[store.User]
	logger  *slog.Logger
	limiter *loginLimiter
}

// New builds the router and registers every route.
// Only TrustedProxies may set the client address through forwarding headers.
func New(cfg Config) (*Server, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Server{
		router:  gin.New(),
		store:   cfg.Store,
		guard:   cfg.Guard,
		logger:  log,
		limiter: newLoginLimiter(cfg.LoginRatePerMinute, cfg.LoginBurst),
	}

	if err := s.router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	s.router.Use(gin.Recovery(), s.requestLogger(), corsMiddleware(cfg.CORSOrigins))
	s.registerRoutes()
	return s, nil
}

// Handler returns the root http.Handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.health)
	s.router.POST("/login", s.login)
	s.router.POST("/users", s.createUser)
	s.router.GET("/users/:id", s.getUser)

	authorized := s.router.Group("/")
	authorized.Use(jwtauth.JWTAuth(s.guard))
	{
		authorized.GET("/users/me", s.me)

		authorized.GET("/posts", s.listPosts)
		authorized.GET("/posts/:id", s.getPost)
		authorized.POST("/posts", s.createPost)
		authorized.PUT("/posts/:id", s.updatePost)
		authorized.DELETE("/posts/:id", s.deletePost)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// requestLogger assigns a request id shared with the auth middleware and
// logs one line per request
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
			c.Request.Header.Set("X-Request-ID", requestID)
		}
		c.Header("X-Request-ID", requestID)

		reqLog := s.logger.With("request_id", requestID)
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), reqLog))

		c.Next()

		reqLog.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"client_ip", c.ClientIP(),
			"latency", time.Since(start),
		)
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{jwtauth.ChallengeHeader, "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}

	for _, origin := range origins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cors.New(cfg)
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
