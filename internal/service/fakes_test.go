package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"study-service/internal/apperr"
	"study-service/internal/event"
	"study-service/internal/models"
)

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*models.StudySession
	// afterFind runs after FindByID hands out its copy.
	afterFind func(id string)
	updates   int
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]*models.StudySession{}}
}

func (f *fakeSessionStore) Create(ctx context.Context, s *models.StudySession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[s.ID] = s.Clone()
	return nil
}

func (f *fakeSessionStore) FindByID(ctx context.Context, id string) (*models.StudySession, error) {
	f.mu.Lock()
	s, ok := f.sessions[id]
	var out *models.StudySession
	if ok {
		out = s.Clone()
	}
	f.mu.Unlock()

	if ok && f.afterFind != nil {
		f.afterFind(id)
	}
	return out, nil
}

func (f *fakeSessionStore) FindByUser(ctx context.Context, userID string, filter models.SessionFilter) ([]*models.StudySession, int64, error) {
	all, _ := f.FindAllByUser(ctx, userID)
	out := []*models.StudySession{}
	for _, s := range all {
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		out = append(out, s)
	}
	return out, int64(len(out)), nil
}

func (f *fakeSessionStore) FindAllByUser(ctx context.Context, userID string) ([]*models.StudySession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.StudySession{}
	for _, s := range f.sessions {
		if s.UserID == userID {
			out = append(out, s.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (f *fakeSessionStore) Update(ctx context.Context, s *models.StudySession, expectedVersion int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.sessions[s.ID]
	if !ok {
		return apperr.NotFound("session %s not found", s.ID)
	}
	if stored.Version != expectedVersion {
		return apperr.Conflict("session %s was modified concurrently", s.ID)
	}
	s.Version = expectedVersion + 1
	f.sessions[s.ID] = s.Clone()
	f.updates++
	return nil
}

func (f *fakeSessionStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[id]; !ok {
		return apperr.NotFound("session %s not found", id)
	}
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessionStore) stored(id string) *models.StudySession {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[id].Clone()
}

type fakeQuestionSource struct {
	questions []models.Question
}

func (f *fakeQuestionSource) FindAll(ctx context.Context, filter models.QuestionFilter) ([]models.Question, error) {
	out := []models.Question{}
	for _, q := range f.questions {
		if filter.ExamID != "" && q.ExamID != filter.ExamID {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

type fakeLookup struct {
	mu          sync.Mutex
	questions   map[string]*models.Question
	topics      map[string]*models.Topic
	providers   map[string]*models.Provider
	exams       map[string]*models.Exam
	invalidated []string
}

func newFakeLookup() *fakeLookup {
	return &fakeLookup{
		questions: map[string]*models.Question{},
		topics:    map[string]*models.Topic{},
		providers: map[string]*models.Provider{},
		exams:     map[string]*models.Exam{},
	}
}

func (f *fakeLookup) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.questions[id], nil
}

func (f *fakeLookup) GetTopic(ctx context.Context, id string) (*models.Topic, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.topics[id], nil
}

func (f *fakeLookup) GetProvider(ctx context.Context, id string) (*models.Provider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.providers[id], nil
}

func (f *fakeLookup) GetExam(ctx context.Context, id string) (*models.Exam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exams[id], nil
}

func (f *fakeLookup) Invalidate(ctx context.Context, keys ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, keys...)
}

type fakeSnapshotStore struct {
	mu        sync.Mutex
	snapshots map[string]*models.AnalyticsSnapshot
	saves     int
}

func newFakeSnapshotStore() *fakeSnapshotStore {
	return &fakeSnapshotStore{snapshots: map[string]*models.AnalyticsSnapshot{}}
}

func (f *fakeSnapshotStore) Save(ctx context.Context, s *models.AnalyticsSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots[s.UserID+":"+s.Date] = s
	f.saves++
	return nil
}

func (f *fakeSnapshotStore) Get(ctx context.Context, userID, date string) (*models.AnalyticsSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshots[userID+":"+date], nil
}

func (f *fakeSnapshotStore) Delete(ctx context.Context, userID, date string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.snapshots, userID+":"+date)
	return nil
}

type fakeGoalStore struct {
	mu    sync.Mutex
	goals map[string]models.Goal
}

func newFakeGoalStore() *fakeGoalStore {
	return &fakeGoalStore{goals: map[string]models.Goal{}}
}

func (f *fakeGoalStore) Create(ctx context.Context, g *models.Goal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.goals[g.ID] = *g
	return nil
}

func (f *fakeGoalStore) FindByID(ctx context.Context, id string) (*models.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.goals[id]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (f *fakeGoalStore) FindByUser(ctx context.Context, userID string, status models.GoalStatus) ([]models.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Goal{}
	for _, g := range f.goals {
		if g.UserID == userID && (status == "" || g.Status == status) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGoalStore) UpdateStatus(ctx context.Context, id string, from, to models.GoalStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.goals[id]
	if !ok || g.Status != from {
		return apperr.Conflict("goal %s is no longer %s", id, from)
	}
	g.Status = to
	f.goals[id] = g
	return nil
}

func (f *fakeGoalStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.goals[id]; !ok {
		return apperr.NotFound("goal %s not found", id)
	}
	delete(f.goals, id)
	return nil
}

type recordingPublisher struct {
	mu       sync.Mutex
	sessions []string
	datasets []*event.DatasetEvent
}

func (p *recordingPublisher) PublishSessionEvent(ctx context.Context, e *event.SessionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions = append(p.sessions, e.EventType)
	return nil
}

func (p *recordingPublisher) PublishDatasetEvent(ctx context.Context, e *event.DatasetEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.datasets = append(p.datasets, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type fakeReports struct {
	objects map[string][]byte
}

func (f *fakeReports) PutObject(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	f.objects[bucket+"/"+key] = data
	return nil
}

func (f *fakeReports) PresignedURL(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	return "https://storage.local/" + bucket + "/" + key + "?signed", nil
}
