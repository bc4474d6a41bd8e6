package answers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"rna/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fetchFunc func(ctx context.Context, rnaID string) ([]domain.Answer, error)

func (f fetchFunc) GetAnswers(ctx context.Context, rnaID string) ([]domain.Answer, error) {
	return f(ctx, rnaID)
}

func TestLoader_InitialStateIsIdle(t *testing.T) {
	loader := NewLoader(fetchFunc(func(context.Context, string) ([]domain.Answer, error) { return nil, nil }))

	assert.Equal(t, StatusIdle, loader.Snapshot().Status)
	_, ok := loader.Answers("r1")
	assert.False(t, ok)
}

func TestLoader_EmptyIsReadyNotMissing(t *testing.T) {
	loader := NewLoader(fetchFunc(func(context.Context, string) ([]domain.Answer, error) { return nil, nil }))

	snapshot, err := loader.Load(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, StatusReady, snapshot.Status)

	answers, ok := loader.Answers("r1")
	assert.True(t, ok)
	assert.NotNil(t, answers)
	assert.Empty(t, answers)

	_, ok = loader.Answers("r2")
	assert.False(t, ok)
}

func TestLoader_Failure(t *testing.T) {
	boom := errors.New("boom")
	loader := NewLoader(fetchFunc(func(context.Context, string) ([]domain.Answer, error) { return nil, boom }))

	snapshot, err := loader.Load(context.Background(), "r1")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StatusFailed, snapshot.Status)
	assert.Equal(t, StatusFailed, loader.Snapshot().Status)
	assert.Nil(t, loader.Snapshot().Answers)
}

func TestLoader_DiscardsStaleResult(t *testing.T) {
	started := make(chan struct{})
	var firstCtx context.Context

	loader := NewLoader(fetchFunc(func(ctx context.Context, rnaID string) ([]domain.Answer, error) {
		if rnaID == "r1" {
			firstCtx = ctx
			close(started)
			<-ctx.Done()
			// A late response still arrives after cancellation.
			return []domain.Answer{{ID: "late", RnaID: "r1", QuestionID: "q1"}}, nil
		}
		return []domain.Answer{{ID: "a2", RnaID: "r2", QuestionID: "q2"}}, nil
	}))

	var wg sync.WaitGroup
	var staleErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, staleErr = loader.Load(context.Background(), "r1")
	}()

	<-started
	snapshot, err := loader.Load(context.Background(), "r2")
	require.NoError(t, err)
	assert.Equal(t, "r2", snapshot.RnaID)

	wg.Wait()
	assert.ErrorIs(t, staleErr, ErrStale)
	assert.ErrorIs(t, firstCtx.Err(), context.Canceled)

	current := loader.Snapshot()
	assert.Equal(t, "r2", current.RnaID)
	assert.Equal(t, StatusReady, current.Status)
	require.Len(t, current.Answers, 1)
	assert.Equal(t, "a2", current.Answers[0].ID)
}

func TestLoader_Reset(t *testing.T) {
	started := make(chan struct{})
	loader := NewLoader(fetchFunc(func(ctx context.Context, rnaID string) ([]domain.Answer, error) {
		close(started)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
			return []domain.Answer{}, nil
		}
	}))

	errs := make(chan error, 1)
	go func() {
		_, err := loader.Load(context.Background(), "r1")
		errs <- err
	}()

	<-started
	loader.Reset()

	assert.ErrorIs(t, <-errs, ErrStale)
	assert.Equal(t, StatusIdle, loader.Snapshot().Status)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "idle", StatusIdle.String())
	assert.Equal(t, "loading", StatusLoading.String())
	assert.Equal(t, "ready", StatusReady.String())
	assert.Equal(t, "failed", StatusFailed.String())
}
