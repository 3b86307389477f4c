package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"study-service/internal/logger"
	"study-service/internal/models"
	"study-service/internal/service"
)

type GoalHandler struct {
	Service *service.GoalService
	log     *logger.Logger
}

func NewGoalHandler(s *service.GoalService, log *logger.Logger) *GoalHandler {
	return &GoalHandler{Service: s, log: log}
}

func (h *GoalHandler) CreateGoal(c *gin.Context) {
	var req service.CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	goal, err := h.Service.CreateGoal(c.Request.Context(), currentUser(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, goal)
}

func (h *GoalHandler) ListGoals(c *gin.Context) {
	goals, err := h.Service.ListGoals(c.Request.Context(), currentUser(c), models.GoalStatus(c.Query("status")))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goals": goals})
}

func (h *GoalHandler) GetGoal(c *gin.Context) {
	goal, err := h.Service.GetGoal(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, goal)
}

func (h *GoalHandler) GetProgress(c *gin.Context) {
	progress, err := h.Service.GetProgress(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (h *GoalHandler) UpdateStatus(c *gin.Context) {
	var req struct {
		Status models.GoalStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	goal, err := h.Service.UpdateStatus(c.Request.Context(), currentUser(c), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, goal)
}

func (h *GoalHandler) DeleteGoal(c *gin.Context) {
	if err := h.Service.DeleteGoal(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Goal deleted successfully"})
}
