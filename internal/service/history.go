package service

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"study-service/internal/analytics"
	"study-service/internal/logger"
	"study-service/internal/models"
)

const lookupConcurrency = 8

// enricher resolves topic names and missing question metadata for a set of
// sessions. Lookup failures are logged and the affected entries fall back to
// ids, so enrichment never fails a request.
type enricher struct {
	lookup Lookup
	log    *logger.Logger
}

func (e *enricher) enrich(ctx context.Context, sessions ...*models.StudySession) *analytics.Enrichment {
	result := &analytics.Enrichment{
		Questions:  map[string]analytics.QuestionMeta{},
		TopicNames: map[string]string{},
	}
	if e.lookup == nil {
		return result
	}

	var mu sync.Mutex
	questionIDs := map[string]bool{}
	for _, s := range sessions {
		for _, q := range s.Questions {
			if q.TopicID == "" && q.QuestionID != "" {
				questionIDs[q.QuestionID] = true
			}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)
	for id := range questionIDs {
		id := id
		g.Go(func() error {
			question, err := e.lookup.GetQuestion(gctx, id)
			if err != nil {
				e.log.Warn("Question lookup failed", "question_id", id, "error", err)
				return nil
			}
			if question == nil {
				return nil
			}
			mu.Lock()
			result.Questions[id] = analytics.QuestionMeta{TopicID: question.TopicID, Difficulty: question.Difficulty}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	topicIDs := map[string]bool{}
	for _, s := range sessions {
		for _, q := range s.Questions {
			topicID := q.TopicID
			if topicID == "" {
				topicID = result.Questions[q.QuestionID].TopicID
			}
			if topicID != "" && topicID != analytics.UnknownTopic {
				topicIDs[topicID] = true
			}
		}
	}

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)
	for id := range topicIDs {
		id := id
		g.Go(func() error {
			topic, err := e.lookup.GetTopic(gctx, id)
			if err != nil {
				e.log.Warn("Topic lookup failed", "topic_id", id, "error", err)
				return nil
			}
			if topic == nil {
				return nil
			}
			mu.Lock()
			result.TopicNames[id] = topic.Name
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return result
}

func (e *enricher) providerNames(ctx context.Context, ids []string) map[string]string {
	names := map[string]string{}
	if e.lookup == nil {
		return names
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			provider, err := e.lookup.GetProvider(gctx, id)
			if err != nil {
				e.log.Warn("Provider lookup failed", "provider_id", id, "error", err)
				return nil
			}
			if provider != nil {
				mu.Lock()
				names[id] = provider.Name
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return names
}

// sessionHistory loads a user's completed sessions as analytics records.
// Active, paused and abandoned sessions never reach aggregation.
type sessionHistory struct {
	sessions SessionStore
	enricher *enricher
}

func (h *sessionHistory) load(ctx context.Context, userID string) ([]models.SessionAnalyticsData, *analytics.Enrichment, error) {
	all, err := h.sessions.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	sessions := make([]*models.StudySession, 0, len(all))
	for _, s := range all {
		if s.Status == models.SessionCompleted {
			sessions = append(sessions, s)
		}
	}

	enrich := h.enricher.enrich(ctx, sessions...)
	data := make([]models.SessionAnalyticsData, 0, len(sessions))
	for _, s := range sessions {
		data = append(data, analytics.TransformSession(s, enrich))
	}
	return data, enrich, nil
}
