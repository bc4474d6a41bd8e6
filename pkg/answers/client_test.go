package answers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetAnswers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/rnas/r-1/answers", r.URL.Path)
		assert.Equal(t, "user-7", r.Header.Get("User-ID"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"answers":[{"id":"a1","rnaId":"r-1","questionId":"q1","value":"true"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", WithHeader("User-ID", "user-7"))

	answers, err := client.GetAnswers(context.Background(), "r-1")
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, "q1", answers[0].QuestionID)
}

func TestClient_GetAnswers_EmptyIsNotNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"answers":null}`))
	}))
	defer server.Close()

	answers, err := NewClient(server.URL).GetAnswers(context.Background(), "r-1")
	require.NoError(t, err)
	assert.NotNil(t, answers)
	assert.Empty(t, answers)
}

func TestClient_GetAnswers_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "not found",
			status: http.StatusNotFound,
			body:   `{"code":"rna.show.not_found"}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrNotFound)
			},
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   `{"code":"internal_server_error"}`,
			check: func(t *testing.T, err error) {
				var statusErr *StatusError
				require.True(t, errors.As(err, &statusErr))
				assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
			},
		},
		{
			name:   "malformed body",
			status: http.StatusOK,
			body:   `{"answers":`,
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "decode")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient(server.URL).GetAnswers(context.Background(), "r-1")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestClient_GetAnswers_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewClient(server.URL).GetAnswers(ctx, "r-1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
