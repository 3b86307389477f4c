package service

import (
	"context"
	"time"

	"study-service/internal/apperr"
	"study-service/internal/dataset"
	"study-service/internal/event"
	"study-service/internal/logger"
	"study-service/internal/metrics"
)

type ExamImporter interface {
	ImportExam(ctx context.Context, providerID, examID string) (*dataset.ImportResult, error)
}

type DatasetService struct {
	importer  ExamImporter
	publisher event.Publisher
	log       *logger.Logger
}

// NewDatasetService accepts a nil importer when object storage is not
// configured; imports then fail with InvalidState.
func NewDatasetService(importer ExamImporter, publisher event.Publisher, log *logger.Logger) *DatasetService {
	if log == nil {
		log = logger.Nop()
	}
	return &DatasetService{importer: importer, publisher: publisher, log: log}
}

func (s *DatasetService) ImportExam(ctx context.Context, providerID, examID string) (*dataset.ImportResult, error) {
	if providerID == "" || examID == "" {
		return nil, apperr.Validation("provider_id and exam_id are required")
	}
	if s.importer == nil {
		return nil, apperr.InvalidState("dataset storage is not configured")
	}

	start := time.Now()
	result, err := s.importer.ImportExam(ctx, providerID, examID)
	if err != nil {
		return nil, err
	}
	if result.Objects == 0 {
		return nil, apperr.NotFound("no datasets found for %s/%s", providerID, examID)
	}

	metrics.QuestionsImported.Add(float64(result.Imported))
	s.log.Info("Dataset imported",
		"provider_id", providerID,
		"exam_id", examID,
		"objects", result.Objects,
		"imported", result.Imported,
		"skipped", result.Skipped,
		"duration", time.Since(start),
	)

	if s.publisher != nil {
		e := &event.DatasetEvent{
			EventType:  event.EventTypeDatasetImported,
			ProviderID: providerID,
			ExamID:     examID,
			Objects:    result.Objects,
			Imported:   result.Imported,
			Skipped:    result.Skipped,
			Topics:     result.Topics,
			Timestamp:  time.Now().Unix(),
		}
		if err := s.publisher.PublishDatasetEvent(ctx, e); err != nil {
			s.log.Warn("Failed to publish dataset event", "exam_id", examID, "error", err)
		}
	}
	return result, nil
}
