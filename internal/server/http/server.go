// Package httpserver serves health, Prometheus metrics and a small JSON API
// over the same core the chat transports use.
package httpserver

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

	"github.com/and161185/fittrack/internal/errs"
	"github.com/and161185/fittrack/internal/metrics"
	"github.com/and161185/fittrack/internal/model"
)

const transportName = "http"

// Reports is the read side of the tracker.
type Reports interface {
	Progress(ctx context.Context, userID int64) (model.Progress, error)
	Weekly(ctx context.Context, userID int64) ([]model.DailyLog, error)
}

// Handler turns one input into one reply.
type Handler interface {
	Handle(ctx context.Context, in model.Input) model.Reply
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the route dependencies.
type Server struct {
	reports  Reports
	handler  Handler
	gatherer prometheus.Gatherer
	metrics  *metrics.Metrics
	pingers  []Pinger
	log      *zap.Logger
}

// New constructs the HTTP handlers. gatherer may be nil to disable /metrics.
func New(reports Reports, h Handler, gatherer prometheus.Gatherer, m *metrics.Metrics, log *zap.Logger, pingers ...Pinger) *Server {
	return &Server{reports: reports, handler: h, gatherer: gatherer, metrics: m, pingers: pingers, log: log}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())

	r.GET("/healthz", s.health)
	if s.gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api/users/:id")
	api.GET("/progress", s.progress)
	api.GET("/weekly", s.weekly)
	api.POST("/messages", s.message)
	return r
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("http",
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("dur", time.Since(start)),
		)
	}
}

func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func (s *Server) health(c *gin.Context) {
	for _, p := range s.pingers {
		if err := p.Ping(c.Request.Context()); err != nil {
			s.log.Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func userID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		apiError(c, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}

func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrNoProfile), errors.Is(err, errs.ErrNotFound):
		apiError(c, http.StatusNotFound, "profile not found")
	case errors.Is(err, errs.ErrInvalidInput):
		apiError(c, http.StatusBadRequest, err.Error())
	default:
		s.log.Error("request failed", zap.String("route", c.FullPath()), zap.Error(err))
		apiError(c, http.StatusInternalServerError, "internal error")
	}
}

// GET /api/users/:id/progress
func (s *Server) progress(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	p, err := s.reports.Progress(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// GET /api/users/:id/weekly returns seven days, oldest first.
func (s *Server) weekly(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	logs, err := s.reports.Weekly(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	if logs == nil {
		logs = []model.DailyLog{}
	}
	c.JSON(http.StatusOK, logs)
}

type messageRequest struct {
	Text   string `json:"text" binding:"required"`
	Choice bool   `json:"choice"`
}

// POST /api/users/:id/messages feeds one chat input and returns the reply.
func (s *Server) message(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	var body messageRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if s.metrics != nil {
		s.metrics.IncUpdate(transportName)
	}
	reply := s.handler.Handle(c.Request.Context(), model.Input{UserID: id, Text: body.Text, Choice: body.Choice})
	c.JSON(http.StatusOK, reply)
}
