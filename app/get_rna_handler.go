package app

import (
	"context"
	"database/sql"
	"errors"

	"rna/domain"
	"rna/pkg/httperror"
)

type GetRnaHandler struct {
	repository Repository
}

func NewGetRnaHandler(repository Repository) *GetRnaHandler {
	return &GetRnaHandler{
		repository: repository,
	}
}

type GetRnaRequest struct {
	RnaID string `params:"id"`
}

type GetRnaResponse struct {
	Rna domain.Rna `json:"rna"`
}

func (h GetRnaHandler) Handle(ctx context.Context, req *GetRnaRequest) (*GetRnaResponse, error) {
	rna, err := h.repository.GetRna(ctx, req.RnaID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound(
				"rna.show.not_found",
				"RNA not found",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"rna.show.failed",
			"Failed to retrieve RNA",
			nil,
		)
	}

	return &GetRnaResponse{
		Rna: rna,
	}, nil
}
