package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"study-service/internal/logger"
	"study-service/internal/models"
	"study-service/internal/service"
)

type AnalyticsHandler struct {
	Service *service.AnalyticsService
	log     *logger.Logger
}

func NewAnalyticsHandler(s *service.AnalyticsService, log *logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{Service: s, log: log}
}

func (h *AnalyticsHandler) GetOverview(c *gin.Context) {
	overview, err := h.Service.GetOverview(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func parseTrendQuery(c *gin.Context) (models.TrendQuery, error) {
	q := models.TrendQuery{
		Timeframe:  models.Timeframe(c.DefaultQuery("timeframe", string(models.TimeframeWeek))),
		Metric:     models.TrendMetric(c.DefaultQuery("metric", string(models.MetricAccuracy))),
		ProviderID: c.Query("provider_id"),
		ExamID:     c.Query("exam_id"),
	}
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return q, err
		}
		q.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return q, err
		}
		q.To = &to
	}
	return q, nil
}

// GetTrends returns the metric bucketed by calendar period
func (h *AnalyticsHandler) GetTrends(c *gin.Context) {
	q, err := parseTrendQuery(c)
	if err != nil {
		respondBindError(c, err)
		return
	}

	trends, err := h.Service.GetTrends(c.Request.Context(), currentUser(c), q)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"timeframe": q.Timeframe,
		"metric":    q.Metric,
		"trends":    trends,
	})
}

func (h *AnalyticsHandler) GetTopicCompetencies(c *gin.Context) {
	competencies, err := h.Service.GetTopicCompetencies(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"competencies": competencies})
}

func (h *AnalyticsHandler) GetProviderCompetencies(c *gin.Context) {
	competencies, err := h.Service.GetProviderCompetencies(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"competencies": competencies})
}

func (h *AnalyticsHandler) GetInsights(c *gin.Context) {
	insights, err := h.Service.GetInsights(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, insights)
}
