package app

import (
	"context"
	"database/sql"
	"errors"

	"rna/domain"
	"rna/pkg/httperror"
)

type GetRnaAnswersHandler struct {
	repository Repository
}

func NewGetRnaAnswersHandler(repository Repository) *GetRnaAnswersHandler {
	return &GetRnaAnswersHandler{
		repository: repository,
	}
}

type GetRnaAnswersRequest struct {
	RnaID string `params:"id"`
}

type GetRnaAnswersResponse struct {
	Answers []domain.Answer `json:"answers"`
}

func (h GetRnaAnswersHandler) Handle(ctx context.Context, req *GetRnaAnswersRequest) (*GetRnaAnswersResponse, error) {
	if _, err := h.repository.GetRna(ctx, req.RnaID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound(
				"rna.answers.not_found",
				"RNA not found",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"rna.answers.failed",
			"Failed to retrieve RNA",
			nil,
		)
	}

	answers, err := h.repository.GetAnswersByRnaID(ctx, req.RnaID)
	if err != nil {
		return nil, httperror.InternalServerError(
			"rna.answers.failed",
			"Failed to retrieve answers",
			nil,
		)
	}

	return &GetRnaAnswersResponse{
		Answers: answers,
	}, nil
}
