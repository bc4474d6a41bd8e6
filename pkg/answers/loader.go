package answers

import (
	"context"
	"errors"
	"sync"

	"rna/domain"
)

// ErrStale is returned by Load when another Load started before this one
// finished. Its result was discarded.
var ErrStale = errors.New("answers superseded by a newer request")

type Fetcher interface {
	GetAnswers(ctx context.Context, rnaID string) ([]domain.Answer, error)
}

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Snapshot is the state of the selected subject. Answers is non-nil only when
// Status is StatusReady, so "not loaded yet" never looks like "no answers".
type Snapshot struct {
	RnaID   string
	Status  Status
	Answers []domain.Answer
	Err     error
}

// Loader holds the answers of one selected RNA at a time.
type Loader struct {
	fetcher Fetcher

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	snapshot   Snapshot
}

func NewLoader(fetcher Fetcher) *Loader {
	return &Loader{fetcher: fetcher}
}

// Load selects rnaID and fetches its answers. A fetch still running for an
// earlier selection is cancelled and its result is dropped.
func (l *Loader) Load(ctx context.Context, rnaID string) (Snapshot, error) {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.generation++
	generation := l.generation
	fetchCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.snapshot = Snapshot{RnaID: rnaID, Status: StatusLoading}
	l.mu.Unlock()

	defer cancel()

	answers, err := l.fetcher.GetAnswers(fetchCtx, rnaID)

	l.mu.Lock()
	defer l.mu.Unlock()

	if generation != l.generation {
		return Snapshot{RnaID: rnaID, Status: StatusFailed, Err: ErrStale}, ErrStale
	}
	l.cancel = nil

	if err != nil {
		l.snapshot = Snapshot{RnaID: rnaID, Status: StatusFailed, Err: err}
		return l.snapshot, err
	}

	if answers == nil {
		answers = []domain.Answer{}
	}
	l.snapshot = Snapshot{RnaID: rnaID, Status: StatusReady, Answers: answers}

	return l.snapshot, nil
}

func (l *Loader) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.snapshot
}

// Answers returns the answers of rnaID if they are loaded and current.
func (l *Loader) Answers(rnaID string) ([]domain.Answer, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.snapshot.RnaID != rnaID || l.snapshot.Status != StatusReady {
		return nil, false
	}

	return l.snapshot.Answers, true
}

// Reset cancels any fetch in flight and forgets the selection.
func (l *Loader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.generation++
	l.snapshot = Snapshot{}
}
