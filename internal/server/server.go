package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ticker-bot/internal/cache"
	"ticker-bot/internal/interfaces"
	"ticker-bot/internal/logger"
	"ticker-bot/internal/news"
	"ticker-bot/internal/resolver"
	"ticker-bot/internal/types"
)

// NewsService selects headlines for a symbol's move.
type NewsService interface {
	Headline(ctx context.Context, symbol string) (types.Selection, error)
	HeadlineFor(ctx context.Context, symbol string, signedPercent float64) (types.Selection, error)
}

// ChatHandler answers chat lines.
type ChatHandler interface {
	Handle(ctx context.Context, line string) (string, bool)
}

// CacheStats reports resolution cache occupancy.
type CacheStats interface {
	Stats(ctx context.Context) (cache.Stats, error)
}

// Deps are the services exposed over HTTP. News, Chat and Cache are optional.
type Deps struct {
	Resolver interfaces.Resolver
	News     NewsService
	Chat     ChatHandler
	Cache    CacheStats
	Version  string
}

type Server struct {
	deps Deps
}

func New(deps Deps) *Server {
	return &Server{deps: deps}
}

// Router builds the gin engine with all routes mounted under /api.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	api := r.Group("/api")
	{
		api.GET("/health", s.health)
		api.GET("/symbols/:symbol/name", s.name)
		api.GET("/symbols/:symbol/headline", s.headline)
		api.POST("/chat", s.chat)
		api.GET("/cache/stats", s.cacheStats)
	}
	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": s.deps.Version})
}

func (s *Server) name(c *gin.Context) {
	symbol := types.NormalizeSymbol(c.Param("symbol"))
	force, _ := strconv.ParseBool(c.Query("refresh"))

	res, err := s.deps.Resolver.Resolve(c.Request.Context(), symbol, force)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, resolver.ErrTransport) {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"error": err.Error(), "symbol": symbol})
		return
	}
	if !res.Resolved() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unable to resolve stock ticker: " + symbol, "symbol": symbol})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) headline(c *gin.Context) {
	if s.deps.News == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "news is not configured"})
		return
	}
	symbol := types.NormalizeSymbol(c.Param("symbol"))
	ctx := c.Request.Context()

	var (
		sel types.Selection
		err error
	)
	if raw, ok := c.GetQuery("change"); ok {
		pct, perr := strconv.ParseFloat(raw, 64)
		if perr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "change must be a number"})
			return
		}
		sel, err = s.deps.News.HeadlineFor(ctx, symbol, pct)
	} else {
		sel, err = s.deps.News.Headline(ctx, symbol)
	}

	switch {
	case errors.Is(err, news.ErrFetch):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "symbol": symbol})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "symbol": symbol})
	case sel.Unavailable:
		c.JSON(http.StatusServiceUnavailable, sel)
	default:
		c.JSON(http.StatusOK, sel)
	}
}

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

func (s *Server) chat(c *gin.Context) {
	if s.deps.Chat == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "chat is not configured"})
		return
	}
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	reply, handled := s.deps.Chat.Handle(c.Request.Context(), req.Message)
	c.JSON(http.StatusOK, gin.H{"reply": reply, "handled": handled})
}

func (s *Server) cacheStats(c *gin.Context) {
	if s.deps.Cache == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cache is not configured"})
		return
	}
	stats, err := s.deps.Cache.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		op := logger.StartOperation(c.Request.Context(), "http "+c.Request.Method+" "+c.FullPath())
		c.Request = c.Request.WithContext(op.GetContext())
		c.Next()
		op.End("status", c.Writer.Status())
	}
}
