package api

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Skufu/fitlevel/internal/risk"
)

type sliderRequest struct {
	Sliders risk.SliderInput `json:"sliders"`
	Top     *int             `json:"top"`
}

// bindSliders decodes the body and, in strict mode, rejects out-of-range
// indices. It writes the error response itself and reports whether to go on.
func (h *handler) bindSliders(c *gin.Context) (sliderRequest, bool) {
	var req sliderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return req, false
	}
	if req.Sliders == nil {
		req.Sliders = risk.SliderInput{}
	}

	if h.opts.Strict {
		if err := risk.Validate(req.Sliders); err != nil {
			var verr *risk.ValidationError
			details := []string{err.Error()}
			if errors.As(err, &verr) {
				details = verr.Fields
			}
			_ = c.Error(err)
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation_failed",
				"message": "slider indices must be between 0 and 100",
				"details": details,
			})
			return req, false
		}
	}
	return req, true
}

func (h *handler) assess(c *gin.Context) {
	req, ok := h.bindSliders(c)
	if !ok {
		return
	}

	top := h.opts.TopFeatures
	if req.Top != nil {
		top = *req.Top
	}

	a := h.model.Assess(req.Sliders, top)
	a.ID = uuid.NewString()

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Record(ctx, a); err != nil {
			h.log.WithError(err).WithField("assessment_id", a.ID).Warn("could not record assessment")
		}
	}

	h.log.WithFields(logrus.Fields{
		"request_id": c.GetString(requestIDHeader),
		"risk_score": a.RiskScore,
		"level":      a.Level.Color,
	}).Info("assessment scored")

	c.JSON(http.StatusOK, a)
}

func (h *handler) predict(c *gin.Context) {
	req, ok := h.bindSliders(c)
	if !ok {
		return
	}

	raw, score := h.model.PredictRisk(req.Sliders)
	c.JSON(http.StatusOK, gin.H{"rawPrediction": raw, "riskScore": score})
}

func (h *handler) quests(c *gin.Context) {
	req, ok := h.bindSliders(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"quests": risk.LifestyleQuests(req.Sliders)})
}

func (h *handler) level(c *gin.Context) {
	raw, ok := c.GetQuery("score")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "score is required"})
		return
	}
	score, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(score) || math.IsInf(score, 0) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "score must be a number"})
		return
	}
	c.JSON(http.StatusOK, risk.GamifiedLevel(score))
}

func (h *handler) importance(c *gin.Context) {
	features := h.model.FeatureImportance()

	if raw, ok := c.GetQuery("top"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "top must be an integer"})
			return
		}
		if n > 0 && n < len(features) {
			features = features[:n]
		}
	}

	c.JSON(http.StatusOK, gin.H{"features": features})
}

func (h *handler) features(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"features": risk.Controllable(),
		"min":      risk.MinIndex,
		"max":      risk.MaxIndex,
		"levels":   risk.Levels(),
	})
}

func (h *handler) modelInfo(c *gin.Context) {
	c.JSON(http.StatusOK, h.model.ModelInfo())
}

func (h *handler) recent(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "db disabled"})
		return
	}

	limit := 0
	if raw, ok := c.GetQuery("limit"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	records, err := h.db.Recent(ctx, limit)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load assessments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"assessments": records})
}
