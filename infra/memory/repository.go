// Package memory is a process-local Repository used when no database is
// configured and by tests.
package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"rna/domain"

	"github.com/google/uuid"
)

type Repository struct {
	mu      sync.RWMutex
	rnas    map[string]domain.Rna
	answers map[string][]domain.Answer
	owners  map[string]string
	now     func() time.Time
}

func NewRepository() *Repository {
	return &Repository{
		rnas:    make(map[string]domain.Rna),
		answers: make(map[string][]domain.Answer),
		owners:  make(map[string]string),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (r *Repository) Close() error {
	return nil
}

func (r *Repository) GetRnas(_ context.Context, limit, offset int) ([]domain.Rna, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rnas := r.sortedRnas()
	if offset < 0 || limit < 0 || offset >= len(rnas) {
		return []domain.Rna{}, nil
	}

	end := min(offset+limit, len(rnas))
	return rnas[offset:end], nil
}

func (r *Repository) CountRnas(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rnas), nil
}

func (r *Repository) GetRna(_ context.Context, id string) (domain.Rna, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rna, ok := r.rnas[id]
	if !ok {
		return domain.Rna{}, sql.ErrNoRows
	}

	return rna, nil
}

func (r *Repository) CreateRna(_ context.Context, rna domain.Rna) (domain.Rna, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rna.ID == "" {
		rna.ID = uuid.New().String()
	}
	if rna.SyncStatus == "" {
		rna.SyncStatus = domain.SyncStatusPending
	}
	now := r.now()
	if rna.CreatedAt.IsZero() {
		rna.CreatedAt = now
	}
	rna.UpdatedAt = now

	r.rnas[rna.ID] = rna

	return rna, nil
}

func (r *Repository) GetDownloadedRnas(_ context.Context) ([]domain.Rna, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	downloaded := make([]domain.Rna, 0)
	for _, rna := range r.sortedRnas() {
		if rna.IsDownloaded {
			downloaded = append(downloaded, rna)
		}
	}

	return downloaded, nil
}

func (r *Repository) MarkRnaDownloaded(_ context.Context, id string) (domain.Rna, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rna, ok := r.rnas[id]
	if !ok {
		return domain.Rna{}, sql.ErrNoRows
	}
	if rna.IsDownloaded {
		return domain.Rna{}, domain.ErrAlreadyDownloaded
	}

	rna.IsDownloaded = true
	rna.SyncStatus = domain.SyncStatusPending
	rna.UpdatedAt = r.now()
	r.rnas[id] = rna

	return rna, nil
}

func (r *Repository) UnmarkRnaDownloaded(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rna, ok := r.rnas[id]
	if !ok {
		return sql.ErrNoRows
	}

	rna.IsDownloaded = false
	rna.UpdatedAt = r.now()
	r.rnas[id] = rna

	return nil
}

func (r *Repository) UpdateRnaSyncStatus(_ context.Context, id string, status string, synchronizedAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rna, ok := r.rnas[id]
	if !ok {
		return sql.ErrNoRows
	}

	rna.SyncStatus = status
	if synchronizedAt != nil {
		rna.LastSynchronizedAt = synchronizedAt
	}
	rna.UpdatedAt = r.now()
	r.rnas[id] = rna

	return nil
}

func (r *Repository) GetAnswersByRnaID(_ context.Context, rnaID string) ([]domain.Answer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	answers := make([]domain.Answer, len(r.answers[rnaID]))
	copy(answers, r.answers[rnaID])

	return answers, nil
}

// SaveAnswer inserts the answer or replaces the one with the same id. An id
// owned by another RNA yields domain.ErrAnswerConflict and an answer recorded
// before the stored one yields domain.ErrAnswerStale.
func (r *Repository) SaveAnswer(_ context.Context, answer domain.Answer) (domain.Answer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if answer.ID == "" {
		answer.ID = uuid.New().String()
	}
	now := r.now()
	if answer.RecordedAt.IsZero() {
		answer.RecordedAt = now
	}
	answer.UpdatedAt = now

	if owner, ok := r.owners[answer.ID]; ok && owner != answer.RnaID {
		return domain.Answer{}, domain.ErrAnswerConflict
	}

	existing := r.answers[answer.RnaID]
	for i := range existing {
		if existing[i].ID != answer.ID {
			continue
		}
		if existing[i].RecordedAt.After(answer.RecordedAt) {
			return domain.Answer{}, domain.ErrAnswerStale
		}
		answer.CreatedAt = existing[i].CreatedAt
		existing[i] = answer
		return answer, nil
	}

	if answer.CreatedAt.IsZero() {
		answer.CreatedAt = now
	}
	r.answers[answer.RnaID] = append(existing, answer)
	r.owners[answer.ID] = answer.RnaID

	return answer, nil
}

// sortedRnas returns RNAs newest first, like the SQL repository.
func (r *Repository) sortedRnas() []domain.Rna {
	rnas := make([]domain.Rna, 0, len(r.rnas))
	for _, rna := range r.rnas {
		rnas = append(rnas, rna)
	}

	sort.Slice(rnas, func(i, j int) bool {
		if rnas[i].CreatedAt.Equal(rnas[j].CreatedAt) {
			return rnas[i].ID < rnas[j].ID
		}
		return rnas[i].CreatedAt.After(rnas[j].CreatedAt)
	})

	return rnas
}
