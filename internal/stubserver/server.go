// Package stubserver is a development stand-in for the backend REST API.
// It implements the same contract the client consumes (JWT-style login,
// bearer-gated history/upload/report, keep-last-five retention) with
// in-memory state, so the TUI and the integration tests can run without
// the real service.
package stubserver

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/chemviz/chemviz/internal/model"
)

// Config holds stub server parameters.
type Config struct {
	Addr     string
	Username string
	Password string
}

// Server is an in-memory implementation of the backend API.
type Server struct {
	addr     string
	username string
	password string

	mu      sync.Mutex
	records model.History // newest first, at most model.HistoryKeep
	nextID  int64
	access  map[string]bool
	refresh map[string]bool

	server *http.Server
}

// New creates a stub server. Credentials default to demo/demo.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8000"
	}
	if cfg.Username == "" {
		cfg.Username = "demo"
	}
	if cfg.Password == "" {
		cfg.Password = "demo"
	}
	return &Server{
		addr:     cfg.Addr,
		username: cfg.Username,
		password: cfg.Password,
		nextID:   1,
		access:   make(map[string]bool),
		refresh:  make(map[string]bool),
	}
}

// Router builds the gin engine. Exposed separately from Start so tests can
// drive it through httptest.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	apiGroup := r.Group("/api")
	apiGroup.POST("/login/", s.handleLogin)
	apiGroup.POST("/refresh/", s.handleRefresh)

	authed := apiGroup.Group("", s.requireBearer())
	authed.GET("/history/", s.handleHistory)
	authed.POST("/upload/", s.handleUpload)
	authed.GET("/report/", s.handleReport)

	return r
}

// Start begins serving in the background.
func (s *Server) Start() error {
	s.server = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	go s.server.Serve(listener)
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// RevokeTokens invalidates every issued token. Used to simulate session
// expiry in tests.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = make(map[string]bool)
	s.refresh = make(map[string]bool)
}

func (s *Server) handleLogin(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}
	if req.Username != s.username || req.Password != s.password {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "No active account found with the given credentials"})
		return
	}

	access := uuid.NewString()
	refresh := uuid.NewString()
	s.mu.Lock()
	s.access[access] = true
	s.refresh[refresh] = true
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"access": access, "refresh": refresh})
}

func (s *Server) handleRefresh(c *gin.Context) {
	var req struct {
		Refresh string `json:"refresh" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refresh is required"})
		return
	}

	s.mu.Lock()
	ok := s.refresh[req.Refresh]
	var access string
	if ok {
		access = uuid.NewString()
		s.access[access] = true
	}
	s.mu.Unlock()

	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Token is invalid or expired"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access})
}

func (s *Server) requireBearer() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
			return
		}
		token := strings.TrimSpace(header[len("Bearer "):])

		s.mu.Lock()
		ok := s.access[token]
		s.mu.Unlock()

		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Given token not valid for any token type"})
			return
		}
		c.Next()
	}
}

func (s *Server) handleHistory(c *gin.Context) {
	s.mu.Lock()
	history := append(model.History(nil), s.records...)
	s.mu.Unlock()

	// An empty history serializes as [], not null.
	if history == nil {
		history = model.History{}
	}
	c.JSON(http.StatusOK, history)
}

func (s *Server) handleUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read uploaded file"})
		return
	}
	defer f.Close()

	summary, err := Summarize(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	rec := model.UploadRecord{
		ID:         s.nextID,
		Filename:   fileHeader.Filename,
		UploadedAt: time.Now().UTC(),
		Summary:    summary,
	}
	s.nextID++
	s.records = append(model.History{rec}, s.records...)
	if len(s.records) > model.HistoryKeep {
		s.records = s.records[:model.HistoryKeep]
	}
	s.mu.Unlock()

	c.JSON(http.StatusCreated, gin.H{"message": "uploaded"})
}

func (s *Server) handleReport(c *gin.Context) {
	s.mu.Lock()
	latest := s.records.Latest()
	var rec *model.UploadRecord
	if latest != nil {
		copied := *latest
		rec = &copied
	}
	s.mu.Unlock()

	pdf := BuildReport(rec)
	c.Header("Content-Disposition", `inline; filename="report.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
