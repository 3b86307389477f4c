package service

import (
	"context"
	"sort"
	"time"

	"study-service/internal/analytics"
	"study-service/internal/apperr"
	"study-service/internal/logger"
	"study-service/internal/metrics"
	"study-service/internal/models"
)

type AnalyticsService struct {
	history   *sessionHistory
	snapshots SnapshotStore
	settings  analytics.Settings
	log       *logger.Logger
	now       func() time.Time
}

func NewAnalyticsService(sessions SessionStore, snapshots SnapshotStore, lookup Lookup, settings analytics.Settings, log *logger.Logger) *AnalyticsService {
	if log == nil {
		log = logger.Nop()
	}
	defaults := analytics.DefaultSettings()
	if settings.TargetAccuracy <= 0 {
		settings.TargetAccuracy = defaults.TargetAccuracy
	}
	if settings.ComparisonWindow <= 0 {
		settings.ComparisonWindow = defaults.ComparisonWindow
	}
	return &AnalyticsService{
		history: &sessionHistory{
			sessions: sessions,
			enricher: &enricher{lookup: lookup, log: log},
		},
		snapshots: snapshots,
		settings:  settings,
		log:       log,
		now:       time.Now,
	}
}

// GetUserAnalytics returns today's snapshot when one exists and otherwise
// recomputes and stores it. Snapshot storage failures only cost the cache.
func (s *AnalyticsService) GetUserAnalytics(ctx context.Context, userID string) (*models.AnalyticsSnapshot, error) {
	now := s.now()
	date := models.SnapshotDate(now)

	if s.snapshots != nil {
		snapshot, err := s.snapshots.Get(ctx, userID, date)
		if err != nil {
			s.log.Warn("Failed to read analytics snapshot", "user_id", userID, "date", date, "error", err)
		}
		if snapshot != nil {
			metrics.SnapshotLookups.WithLabelValues("hit").Inc()
			return snapshot, nil
		}
		metrics.SnapshotLookups.WithLabelValues("miss").Inc()
	}

	snapshot, err := s.compute(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	if s.snapshots != nil {
		if err := s.snapshots.Save(ctx, snapshot); err != nil {
			s.log.Warn("Failed to save analytics snapshot", "user_id", userID, "date", date, "error", err)
		}
	}
	return snapshot, nil
}

func (s *AnalyticsService) compute(ctx context.Context, userID string, now time.Time) (*models.AnalyticsSnapshot, error) {
	data, enrich, err := s.history.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	providerIDs := []string{}
	seen := map[string]bool{}
	for _, d := range data {
		if d.ProviderID != "" && !seen[d.ProviderID] {
			seen[d.ProviderID] = true
			providerIDs = append(providerIDs, d.ProviderID)
		}
	}
	sort.Strings(providerIDs)
	providerNames := s.history.enricher.providerNames(ctx, providerIDs)

	overview := analytics.BuildOverview(data, now)
	topics := analytics.TopicCompetencies(data, enrich.TopicNames, s.settings, now)
	providers := analytics.ProviderCompetencies(data, providerNames, s.settings, now)

	return &models.AnalyticsSnapshot{
		ID:                   models.SnapshotID(userID, now),
		UserID:               userID,
		Date:                 models.SnapshotDate(now),
		Overview:             overview,
		TopicCompetencies:    topics,
		ProviderCompetencies: providers,
		Insights:             analytics.GenerateInsights(topics, providers, overview),
		Recommendations:      analytics.GenerateRecommendations(topics, overview, s.settings),
		CreatedAt:            now,
	}, nil
}

func (s *AnalyticsService) GetOverview(ctx context.Context, userID string) (*models.PerformanceOverview, error) {
	snapshot, err := s.GetUserAnalytics(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &snapshot.Overview, nil
}

func (s *AnalyticsService) GetTopicCompetencies(ctx context.Context, userID string) ([]models.TopicCompetency, error) {
	snapshot, err := s.GetUserAnalytics(ctx, userID)
	if err != nil {
		return nil, err
	}
	return snapshot.TopicCompetencies, nil
}

func (s *AnalyticsService) GetProviderCompetencies(ctx context.Context, userID string) ([]models.ProviderCompetency, error) {
	snapshot, err := s.GetUserAnalytics(ctx, userID)
	if err != nil {
		return nil, err
	}
	return snapshot.ProviderCompetencies, nil
}

type InsightsResult struct {
	Insights        []models.LearningInsight `json:"insights"`
	Recommendations []string                 `json:"recommendations"`
}

func (s *AnalyticsService) GetInsights(ctx context.Context, userID string) (*InsightsResult, error) {
	snapshot, err := s.GetUserAnalytics(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &InsightsResult{Insights: snapshot.Insights, Recommendations: snapshot.Recommendations}, nil
}

// GetTrends always recomputes; trend queries are parameterized and are not
// part of the daily snapshot.
func (s *AnalyticsService) GetTrends(ctx context.Context, userID string, q models.TrendQuery) ([]models.TrendData, error) {
	if !analytics.ValidTimeframe(q.Timeframe) {
		return nil, apperr.Validation("unknown timeframe %q", q.Timeframe)
	}
	if !analytics.ValidMetric(q.Metric) {
		return nil, apperr.Validation("unknown metric %q", q.Metric)
	}
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return nil, apperr.Validation("to must not be before from")
	}

	data, _, err := s.history.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return analytics.CalculateTrends(data, q), nil
}

// sessionData returns the user's completed sessions as analytics records.
func (s *AnalyticsService) sessionData(ctx context.Context, userID string) ([]models.SessionAnalyticsData, error) {
	data, _, err := s.history.load(ctx, userID)
	return data, err
}
