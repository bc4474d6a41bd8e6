package app

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rna/domain"
	"rna/internal/middleware"
	"rna/pkg/catalog"
	"rna/pkg/events"
	"rna/pkg/httperror"

	"github.com/go-playground/validator/v10"
)

type CreateAnswerHandler struct {
	repository     Repository
	catalog        *catalog.Catalog
	eventPublisher events.Publisher
}

type CreateAnswerRequest struct {
	RnaID      string `params:"id" validate:"required"`
	ID         string `json:"id,omitempty" validate:"omitempty,uuid"`
	QuestionID string `json:"questionId" validate:"required"`
	Value      string `json:"value" validate:"max=4000"`
	Notes      string `json:"notes" validate:"max=4000"`
}

type CreateAnswerResponse struct {
	Answer domain.Answer `json:"answer"`
}

func NewCreateAnswerHandler(repository Repository, catalog *catalog.Catalog, eventPublisher events.Publisher) *CreateAnswerHandler {
	return &CreateAnswerHandler{
		repository:     repository,
		catalog:        catalog,
		eventPublisher: eventPublisher,
	}
}

func (h CreateAnswerHandler) Handle(ctx context.Context, req *CreateAnswerRequest) (*CreateAnswerResponse, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(req); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			return nil, httperror.BadRequest(
				"answer.create.validation_failed",
				"Validation failed for the request",
				ve.Error(),
			)
		}

		return nil, httperror.InternalServerError(
			"answer.create.validation_error",
			"An unexpected validation error occurred",
			nil,
		)
	}

	question, ok := h.catalog.Question(req.QuestionID)
	if !ok {
		return nil, httperror.UnprocessableEntity(
			"answer.create.unknown_question",
			"Question does not exist",
			map[string]string{"questionId": req.QuestionID},
		)
	}

	if !question.AcceptsValue(req.Value) {
		return nil, httperror.UnprocessableEntity(
			"answer.create.invalid_value",
			"Value does not match the question type",
			map[string]string{"questionId": question.ID, "type": question.Type},
		)
	}

	if _, err := h.repository.GetRna(ctx, req.RnaID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound(
				"answer.create.rna_not_found",
				"RNA not found",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"answer.create.failed",
			"Failed to retrieve RNA",
			nil,
		)
	}

	answer, err := h.repository.SaveAnswer(ctx, domain.Answer{
		ID:         req.ID,
		RnaID:      req.RnaID,
		QuestionID: question.ID,
		Value:      req.Value,
		Notes:      req.Notes,
		RecordedAt: time.Now().UTC(),
	})
	if errors.Is(err, domain.ErrAnswerConflict) {
		return nil, httperror.Conflict(
			"answer.create.conflict",
			"Answer id is already used by another RNA",
			map[string]string{"id": req.ID},
		)
	}
	if errors.Is(err, domain.ErrAnswerStale) {
		return nil, httperror.Conflict(
			"answer.create.stale",
			"A newer version of this answer is already stored",
			map[string]string{"id": req.ID},
		)
	}
	if err != nil {
		return nil, httperror.InternalServerError(
			"answer.create.create_failed",
			"An error occurred while saving the answer",
			nil,
		)
	}

	events.Emit(ctx, h.eventPublisher, events.AnswerExchange, events.AnswerRecordedEvent, events.AnswerRecordedPayload{
		ID:         answer.ID,
		RnaID:      answer.RnaID,
		QuestionID: answer.QuestionID,
		Value:      answer.Value,
		Notes:      answer.Notes,
		RecordedBy: middleware.UserID(ctx),
		RecordedAt: answer.RecordedAt,
	})

	return &CreateAnswerResponse{
		Answer: answer,
	}, nil
}
