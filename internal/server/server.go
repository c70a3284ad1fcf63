// Package server exposes the staging area and the generator over HTTP.
package server

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/gobeaver/specscribe"
	"github.com/gobeaver/specscribe/internal/generate"
)

// Server routes API requests to the staging area and generator.
type Server struct {
	staging   *specscribe.StagingArea
	generator generate.Generator
	logger    *slog.Logger
	origins   []string
	engine    *gin.Engine
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the logger used for request and staging logs
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithCORSOrigins restricts cross-origin requests to origins. An empty list
// or "*" allows all origins.
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) {
		s.origins = origins
	}
}

// New creates a server. The gin mode is left to the caller.
func New(staging *specscribe.StagingArea, generator generate.Generator, options ...Option) *Server {
	s := &Server{
		staging:   staging,
		generator: generator,
		logger:    slog.Default(),
	}
	for _, option := range options {
		option(s)
	}

	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.engine.Use(cors.New(s.corsConfig()))
	s.routes()

	return s
}

// Handler returns the HTTP handler for the API
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() {
	s.engine.GET("/", s.welcome)

	api := s.engine.Group("/api")
	{
		api.GET("/health", s.health)
		api.GET("/templates", s.templates)

		api.POST("/upload-job-spec", s.upload(specscribe.KindJobSpec, "job_specification"))
		api.POST("/upload-cv", s.upload(specscribe.KindCV, "cv_content"))
		api.POST("/upload-interview-doc", s.upload(specscribe.KindInterviewDoc, "content"))

		api.POST("/generate-job-spec", s.generateJobSpec)
		api.POST("/generate-interview-questions", s.generateInterviewQuestions)

		api.GET("/documents/:kind", s.listDocuments)
		api.GET("/documents/:kind/:id", s.getDocument)
		api.DELETE("/documents/:kind/:id", s.discardDocument)
	}
}

func (s *Server) corsConfig() cors.Config {
	config := cors.DefaultConfig()
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}

	var origins []string
	for _, o := range s.origins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	return config
}

// requestLogger logs one line per request with slog
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		s.logger.Log(c.Request.Context(), level, "request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		)
	}
}

func (s *Server) welcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to Spec Scribe API"})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) templates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": generate.Templates()})
}
