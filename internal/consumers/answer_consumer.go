package consumers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rna/app"
	"rna/domain"
	"rna/pkg/catalog"
	"rna/pkg/events"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ErrInvalidAnswer marks events that can never be applied. It wraps
// events.ErrUnprocessable so the consumer dead-letters them without a retry.
var ErrInvalidAnswer = fmt.Errorf("invalid answer: %w", events.ErrUnprocessable)

// AnswerEventHandler applies answers recorded elsewhere, usually by devices
// that worked offline, to the repository.
type AnswerEventHandler struct {
	repository app.Repository
	catalog    *catalog.Catalog
	validate   *validator.Validate
}

func NewAnswerEventHandler(repository app.Repository, catalog *catalog.Catalog) *AnswerEventHandler {
	return &AnswerEventHandler{
		repository: repository,
		catalog:    catalog,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *AnswerEventHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	zap.L().Info("Answer event received",
		zap.String("event", event.Event),
		zap.String("version", event.Version),
		zap.String("traceId", event.TraceID),
	)

	switch event.Event {
	case events.AnswerRecordedEvent:
		return h.handleAnswerRecorded(ctx, event)
	default:
		zap.L().Warn("Unknown answer event type", zap.String("event", event.Event))
		return nil
	}
}

func (h *AnswerEventHandler) handleAnswerRecorded(ctx context.Context, event *events.Event) error {
	var payload events.AnswerRecordedPayload
	if err := event.DecodePayload(&payload); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAnswer, err)
	}

	if err := h.validate.Struct(payload); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAnswer, err)
	}

	question, ok := h.catalog.Question(payload.QuestionID)
	if !ok {
		return fmt.Errorf("%w: unknown question %s", ErrInvalidAnswer, payload.QuestionID)
	}
	if !question.AcceptsValue(payload.Value) {
		return fmt.Errorf("%w: value %q does not fit %s question %s", ErrInvalidAnswer, payload.Value, question.Type, question.ID)
	}

	if _, err := h.repository.GetRna(ctx, payload.RnaID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: unknown rna %s", ErrInvalidAnswer, payload.RnaID)
		}
		return fmt.Errorf("failed to get rna: %w", err)
	}

	recordedAt := payload.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = event.Timestamp
	}

	answer, err := h.repository.SaveAnswer(ctx, domain.Answer{
		ID:         payload.ID,
		RnaID:      payload.RnaID,
		QuestionID: question.ID,
		Value:      payload.Value,
		Notes:      payload.Notes,
		RecordedAt: recordedAt,
	})
	switch {
	case errors.Is(err, domain.ErrAnswerStale):
		zap.L().Info("Skipping stale answer",
			zap.String("answerId", payload.ID),
			zap.Time("recordedAt", recordedAt),
			zap.String("traceId", event.TraceID),
		)
		return nil
	case errors.Is(err, domain.ErrAnswerConflict):
		return fmt.Errorf("%w: answer %s belongs to another rna", ErrInvalidAnswer, payload.ID)
	case err != nil:
		return fmt.Errorf("failed to save answer: %w", err)
	}

	zap.L().Info("Answer applied",
		zap.String("answerId", answer.ID),
		zap.String("rnaId", answer.RnaID),
		zap.String("questionId", answer.QuestionID),
		zap.Time("recordedAt", answer.RecordedAt),
		zap.String("traceId", event.TraceID),
	)

	return nil
}
