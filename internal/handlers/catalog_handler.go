package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"study-service/internal/logger"
	"study-service/internal/models"
	"study-service/internal/service"
)

type CatalogHandler struct {
	Service *service.CatalogService
	log     *logger.Logger
}

func NewCatalogHandler(s *service.CatalogService, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{Service: s, log: log}
}

func catalogFilter(c *gin.Context) models.CatalogFilter {
	return models.CatalogFilter{
		ProviderID: c.Query("provider_id"),
		ExamID:     c.Query("exam_id"),
		Page:       queryInt(c, "page", 1),
		Limit:      queryInt(c, "limit", 20),
	}
}

func (h *CatalogHandler) CreateProvider(c *gin.Context) {
	var provider models.Provider
	if err := c.ShouldBindJSON(&provider); err != nil {
		respondBindError(c, err)
		return
	}
	saved, err := h.Service.SaveProvider(c.Request.Context(), &provider)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (h *CatalogHandler) GetProvider(c *gin.Context) {
	provider, err := h.Service.GetProvider(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, provider)
}

func (h *CatalogHandler) ListProviders(c *gin.Context) {
	providers, err := h.Service.ListProviders(c.Request.Context(), catalogFilter(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"providers": providers})
}

func (h *CatalogHandler) CreateExam(c *gin.Context) {
	var exam models.Exam
	if err := c.ShouldBindJSON(&exam); err != nil {
		respondBindError(c, err)
		return
	}
	saved, err := h.Service.SaveExam(c.Request.Context(), &exam)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (h *CatalogHandler) GetExam(c *gin.Context) {
	exam, err := h.Service.GetExam(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, exam)
}

func (h *CatalogHandler) ListExams(c *gin.Context) {
	exams, err := h.Service.ListExams(c.Request.Context(), catalogFilter(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exams": exams})
}

func (h *CatalogHandler) CreateTopic(c *gin.Context) {
	var topic models.Topic
	if err := c.ShouldBindJSON(&topic); err != nil {
		respondBindError(c, err)
		return
	}
	saved, err := h.Service.SaveTopic(c.Request.Context(), &topic)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (h *CatalogHandler) GetTopic(c *gin.Context) {
	topic, err := h.Service.GetTopic(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, topic)
}

func (h *CatalogHandler) ListTopics(c *gin.Context) {
	topics, err := h.Service.ListTopics(c.Request.Context(), catalogFilter(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"topics": topics})
}

type QuestionHandler struct {
	Service *service.QuestionService
	log     *logger.Logger
}

func NewQuestionHandler(s *service.QuestionService, log *logger.Logger) *QuestionHandler {
	return &QuestionHandler{Service: s, log: log}
}

func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var q models.Question
	if err := c.ShouldBindJSON(&q); err != nil {
		respondBindError(c, err)
		return
	}
	created, err := h.Service.CreateQuestion(c.Request.Context(), &q)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	q, err := h.Service.GetQuestion(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

// ListQuestions supports provider_id, exam_id, topic_id (comma separated),
// difficulty and search filters
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	filter := models.QuestionFilter{
		ProviderID: c.Query("provider_id"),
		ExamID:     c.Query("exam_id"),
		Search:     c.Query("search"),
		Page:       queryInt(c, "page", 1),
		Limit:      queryInt(c, "limit", 20),
	}
	if topics := c.Query("topic_id"); topics != "" {
		filter.TopicIDs = strings.Split(topics, ",")
	}
	if d := c.Query("difficulty"); d != "" {
		filter.Difficulty = models.ParseDifficulty(d)
	}

	questions, total, err := h.Service.ListQuestions(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"questions": questions,
		"total":     total,
		"page":      filter.Page,
		"limit":     filter.Limit,
	})
}

func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	var q models.Question
	if err := c.ShouldBindJSON(&q); err != nil {
		respondBindError(c, err)
		return
	}
	updated, err := h.Service.UpdateQuestion(c.Request.Context(), c.Param("id"), &q)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	if err := h.Service.DeleteQuestion(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Question deleted successfully"})
}
