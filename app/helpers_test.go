package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"rna/domain"
	"rna/infra/memory"
	"rna/pkg/catalog"
	"rna/pkg/events"

	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func testCatalog() *catalog.Catalog {
	return catalog.New(
		[]domain.Category{
			{ID: "C1", Name: "Shelter"},
			{ID: "C2", Name: "Water"},
		},
		[]domain.SubCategory{
			{ID: "S1", CategoryID: "C1", Name: "Damage"},
			{ID: "S2", CategoryID: "C1", Name: "Displacement"},
			{ID: "S3", CategoryID: "C2", Name: "Access"},
		},
		[]domain.Question{
			{ID: "Q1", SubCategoryID: "S1", Text: "Roof intact?", Type: domain.QuestionTypeYesNo},
			{ID: "Q2", SubCategoryID: "S1", Text: "How many homes?", Type: domain.QuestionTypeText},
			{ID: "Q3", SubCategoryID: "S2", Text: "Families displaced?", Type: domain.QuestionTypeYesNo},
			{ID: "Q4", SubCategoryID: "S3", Text: "Water point working?", Type: domain.QuestionTypeYesNo},
		},
	)
}

func seedRna(t *testing.T, repo *memory.Repository, rna domain.Rna, questionIDs ...string) domain.Rna {
	t.Helper()
	ctx := context.Background()

	created, err := repo.CreateRna(ctx, rna)
	require.NoError(t, err)

	for _, questionID := range questionIDs {
		_, err := repo.SaveAnswer(ctx, domain.Answer{RnaID: created.ID, QuestionID: questionID, Value: "true"})
		require.NoError(t, err)
	}

	return created
}

// failingRepository fails the named operations and delegates the rest.
type failingRepository struct {
	*memory.Repository
	fail map[string]bool
}

func (r failingRepository) GetRnas(ctx context.Context, limit, offset int) ([]domain.Rna, error) {
	if r.fail["GetRnas"] {
		return nil, errBoom
	}
	return r.Repository.GetRnas(ctx, limit, offset)
}

func (r failingRepository) CountRnas(ctx context.Context) (int, error) {
	if r.fail["CountRnas"] {
		return 0, errBoom
	}
	return r.Repository.CountRnas(ctx)
}

func (r failingRepository) GetRna(ctx context.Context, id string) (domain.Rna, error) {
	if r.fail["GetRna"] {
		return domain.Rna{}, errBoom
	}
	return r.Repository.GetRna(ctx, id)
}

func (r failingRepository) GetAnswersByRnaID(ctx context.Context, rnaID string) ([]domain.Answer, error) {
	if r.fail["GetAnswersByRnaID"] {
		return nil, errBoom
	}
	return r.Repository.GetAnswersByRnaID(ctx, rnaID)
}

func (r failingRepository) GetDownloadedRnas(ctx context.Context) ([]domain.Rna, error) {
	if r.fail["GetDownloadedRnas"] {
		return nil, errBoom
	}
	return r.Repository.GetDownloadedRnas(ctx)
}

type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	failFor map[string]bool
	uploads int
	delay   time.Duration
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}, failFor: map[string]bool{}}
}

func (s *memoryStore) Upload(key string, data []byte) error {
	time.Sleep(s.delay)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.uploads++

	if s.failFor[key] {
		return errBoom
	}
	s.objects[key] = data
	return nil
}

func (s *memoryStore) URL(key string) string {
	return "https://packages.example.org/" + key
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, event *events.Event, _ events.Headers) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	names := make([]string, len(p.events))
	for i, e := range p.events {
		names[i] = e.Event
	}
	return names
}

func at(minute int) time.Time {
	return time.Date(2026, 3, 1, 10, minute, 0, 0, time.UTC)
}
