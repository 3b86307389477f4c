package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"study-service/internal/logger"
	"study-service/internal/models"
	"study-service/internal/service"
)

type SessionHandler struct {
	Service *service.SessionService
	log     *logger.Logger
}

func NewSessionHandler(s *service.SessionService, log *logger.Logger) *SessionHandler {
	return &SessionHandler{Service: s, log: log}
}

// CreateSession starts a new study session for the caller
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req service.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	req.UserID = currentUser(c)

	session, err := h.Service.CreateSession(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// GetPoolInfo reports how many questions per difficulty an exam offers
func (h *SessionHandler) GetPoolInfo(c *gin.Context) {
	var topicIDs []string
	if raw := c.Query("topic_ids"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				topicIDs = append(topicIDs, id)
			}
		}
	}

	info, err := h.Service.GetPoolInfo(c.Request.Context(), c.Query("provider_id"), c.Param("id"), topicIDs)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func parseSessionFilter(c *gin.Context) (models.SessionFilter, error) {
	filter := models.SessionFilter{
		Status:     models.SessionStatus(c.Query("status")),
		ProviderID: c.Query("provider_id"),
		ExamID:     c.Query("exam_id"),
		Page:       queryInt(c, "page", 1),
		Limit:      queryInt(c, "limit", 20),
	}
	for key, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, err
		}
		*dst = &t
	}
	return filter, nil
}

// ListSessions lists the caller's sessions with pagination
func (h *SessionHandler) ListSessions(c *gin.Context) {
	filter, err := parseSessionFilter(c)
	if err != nil {
		respondBindError(c, err)
		return
	}

	sessions, total, err := h.Service.ListSessions(c.Request.Context(), currentUser(c), filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"total":    total,
		"page":     filter.Page,
		"limit":    filter.Limit,
	})
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	session, err := h.Service.GetSession(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) DeleteSession(c *gin.Context) {
	if err := h.Service.DeleteSession(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session deleted successfully"})
}

// SubmitAnswer grades one answer
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	var req service.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.Service.SubmitAnswer(c.Request.Context(), currentUser(c), c.Param("id"), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CompleteSession grades and closes the session
func (h *SessionHandler) CompleteSession(c *gin.Context) {
	result, err := h.Service.CompleteSession(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SessionHandler) PauseSession(c *gin.Context) {
	session, err := h.Service.PauseSession(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) ResumeSession(c *gin.Context) {
	session, err := h.Service.ResumeSession(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) AbandonSession(c *gin.Context) {
	session, err := h.Service.AbandonSession(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Navigate moves the current question pointer
func (h *SessionHandler) Navigate(c *gin.Context) {
	var req struct {
		Index *int `json:"index" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	session, err := h.Service.Navigate(c.Request.Context(), currentUser(c), c.Param("id"), *req.Index)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) GetProgress(c *gin.Context) {
	progress, err := h.Service.GetProgress(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (h *SessionHandler) GetResults(c *gin.Context) {
	results, err := h.Service.GetResults(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *SessionHandler) GetSessionAnalytics(c *gin.Context) {
	data, err := h.Service.GetSessionAnalytics(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// ExportReport uploads the results report and returns a download link
func (h *SessionHandler) ExportReport(c *gin.Context) {
	report, err := h.Service.ExportReport(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}
