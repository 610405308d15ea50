// Package api serves the stored opportunities and hunt logs over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/spigell/gig-hunter/internal/opportunity"
	"github.com/spigell/gig-hunter/internal/storage"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

type Server struct {
	opportunities storage.OpportunityStore
	logs          storage.HuntLogStore
	router        *gin.Engine
	logger        *zap.Logger
}

// NewServer builds the router. gatherer may be nil, then /metrics is not served.
func NewServer(opps storage.OpportunityStore, logs storage.HuntLogStore, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	s := &Server{
		opportunities: opps,
		logs:          logs,
		router:        router,
		logger:        logger,
	}

	router.GET("/healthz", s.handleHealth)
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api")
	{
		api.GET("/opportunities", s.handleOpportunities)
		api.GET("/hunt-logs", s.handleHuntLogs)
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleOpportunities(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, err := s.opportunities.Query(c.Request.Context(), f)
	if err != nil {
		s.logger.Error("query opportunities", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if items == nil {
		items = []*opportunity.Opportunity{}
	}

	c.JSON(http.StatusOK, gin.H{"opportunities": items, "count": len(items)})
}

func (s *Server) handleHuntLogs(c *gin.Context) {
	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logs, err := s.logs.List(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error("list hunt logs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if logs == nil {
		logs = []*opportunity.HuntLog{}
	}

	failed := 0
	for _, l := range logs {
		if l.Failed() {
			failed++
		}
	}

	c.JSON(http.StatusOK, gin.H{"hunt_logs": logs, "count": len(logs), "failed": failed})
}

func parseFilter(c *gin.Context) (storage.Filter, error) {
	f := storage.Filter{Platform: c.Query("platform")}

	if raw := c.Query("status"); raw != "" {
		status, err := opportunity.ParseStatus(raw)
		if err != nil {
			return f, err
		}
		f.Status = status
	}

	if raw := c.Query("min_score"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || v > 1 {
			return f, errors.New("min_score must be a number within 0..1")
		}
		f.MinScore = &v
	}

	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		return f, err
	}
	f.Limit = limit
	return f, nil
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, errors.New("limit must be a positive integer")
	}
	return min(limit, maxLimit), nil
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}
