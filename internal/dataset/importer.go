package dataset

import (
	"context"
	"fmt"
	"path"
	"strings"

	"study-service/internal/logger"
	"study-service/internal/models"
)

const datasetFile = "questions.json"

type ObjectStore interface {
	ListObjects(ctx context.Context, bucket, prefix string) ([]string, error)
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}

type QuestionWriter interface {
	Upsert(ctx context.Context, question *models.Question) error
}

type TopicWriter interface {
	Upsert(ctx context.Context, topic *models.Topic) error
}

// ImportResult summarizes one exam import.
type ImportResult struct {
	ProviderID string `json:"provider_id"`
	ExamID     string `json:"exam_id"`
	Objects    int    `json:"objects"`
	Imported   int    `json:"imported"`
	Skipped    int    `json:"skipped"`
	Topics     int    `json:"topics"`
}

type Importer struct {
	store     ObjectStore
	bucket    string
	questions QuestionWriter
	topics    TopicWriter
	log       *logger.Logger
}

func NewImporter(store ObjectStore, bucket string, questions QuestionWriter, topics TopicWriter, log *logger.Logger) *Importer {
	return &Importer{store: store, bucket: bucket, questions: questions, topics: topics, log: log}
}

// ExamPrefix is where an exam's datasets live in the question bucket.
func ExamPrefix(providerID, examID string) string {
	return fmt.Sprintf("questions/%s/%s/", providerID, examID)
}

// ImportExam parses every questions.json under the exam prefix and upserts
// its questions and topics.
func (im *Importer) ImportExam(ctx context.Context, providerID, examID string) (*ImportResult, error) {
	keys, err := im.store.ListObjects(ctx, im.bucket, ExamPrefix(providerID, examID))
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}

	result := &ImportResult{ProviderID: providerID, ExamID: examID}
	seenTopics := map[string]bool{}

	for _, key := range keys {
		if path.Base(key) != datasetFile {
			continue
		}
		result.Objects++

		data, err := im.store.GetObject(ctx, im.bucket, key)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", key, err)
		}

		parsed, err := Parse(data, providerID, examID)
		if err != nil {
			im.log.Warn("Skipping unreadable dataset", "key", key, "error", err)
			continue
		}

		for i := range parsed.Topics {
			topic := &parsed.Topics[i]
			if seenTopics[topic.ID] {
				continue
			}
			if err := im.topics.Upsert(ctx, topic); err != nil {
				return nil, fmt.Errorf("failed to save topic %s: %w", topic.ID, err)
			}
			seenTopics[topic.ID] = true
		}

		for i := range parsed.Questions {
			if err := im.questions.Upsert(ctx, &parsed.Questions[i]); err != nil {
				return nil, fmt.Errorf("failed to save question %s: %w", parsed.Questions[i].ID, err)
			}
		}
		result.Imported += len(parsed.Questions)
		result.Skipped += parsed.Skipped

		im.log.Debug("Imported dataset", "key", key, "questions", len(parsed.Questions), "skipped", parsed.Skipped)
	}

	result.Topics = len(seenTopics)
	if result.Objects == 0 {
		im.log.Warn("No datasets found", "prefix", strings.TrimSuffix(ExamPrefix(providerID, examID), "/"))
	}
	return result, nil
}
