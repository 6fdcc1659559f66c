package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Skufu/fitlevel/internal/risk"
	"github.com/Skufu/fitlevel/internal/store"
)

const requestIDHeader = "X-Request-ID"

type HealthChecker interface {
	Ping(ctx context.Context) error
}

// AssessmentLog is the optional persistence behind /api/assessments.
type AssessmentLog interface {
	HealthChecker
	Record(ctx context.Context, a risk.Assessment) error
	Recent(ctx context.Context, limit int) ([]store.Record, error)
}

// Model is the scoring surface the handlers need.
type Model interface {
	PredictRisk(in risk.SliderInput) (raw, score float64)
	Assess(in risk.SliderInput, n int) risk.Assessment
	FeatureImportance() []risk.FeatureImportance
	ModelInfo() risk.Info
}

type Options struct {
	// Strict rejects slider indices outside 0-100 instead of extrapolating.
	Strict      bool
	TopFeatures int
}

type handler struct {
	model Model
	db    AssessmentLog
	log   *logrus.Logger
	opts  Options
}

// NewRouter wires the JSON API. db may be nil when the assessment log is disabled.
func NewRouter(model Model, db AssessmentLog, log *logrus.Logger, opts Options) *gin.Engine {
	h := &handler{model: model, db: db, log: log, opts: opts}

	router := gin.New()
	router.Use(
		requestID(),
		requestLogger(log),
		gin.Recovery(),
		limitBodySize(1<<20), // 1MB max body
		cors.New(cors.Config{
			AllowOrigins:  []string{"*"},
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", requestIDHeader},
			ExposeHeaders: []string{requestIDHeader},
			MaxAge:        12 * time.Hour,
		}),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/readyz", h.ready)

	api := router.Group("/api")
	api.GET("/features", h.features)
	api.GET("/model", h.modelInfo)
	api.POST("/risk/assess", h.assess)
	api.POST("/risk/predict", h.predict)
	api.POST("/risk/quests", h.quests)
	api.GET("/risk/level", h.level)
	api.GET("/risk/importance", h.importance)
	api.GET("/assessments", h.recent)

	return router
}

func (h *handler) ready(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "disabled"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "degraded",
			"db":     fmt.Sprintf("unhealthy: %v", err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "ok"})
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"request_id": c.GetString(requestIDHeader),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
		})
		if len(c.Errors) > 0 {
			entry.WithField("errors", c.Errors.String()).Warn("request failed")
			return
		}
		entry.Info("request")
	}
}

func limitBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
