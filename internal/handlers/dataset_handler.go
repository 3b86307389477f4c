package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"study-service/internal/logger"
	"study-service/internal/service"
)

type DatasetHandler struct {
	Service *service.DatasetService
	log     *logger.Logger
}

func NewDatasetHandler(s *service.DatasetService, log *logger.Logger) *DatasetHandler {
	return &DatasetHandler{Service: s, log: log}
}

// ImportDataset loads an exam's study datasets from object storage
func (h *DatasetHandler) ImportDataset(c *gin.Context) {
	var req struct {
		ProviderID string `json:"provider_id" binding:"required"`
		ExamID     string `json:"exam_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.Service.ImportExam(c.Request.Context(), req.ProviderID, req.ExamID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
