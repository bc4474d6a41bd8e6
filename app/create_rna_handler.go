package app

import (
	"context"

	"rna/domain"
	"rna/internal/middleware"
	"rna/pkg/httperror"

	"github.com/go-playground/validator/v10"
)

type CreateRnaHandler struct {
	repository Repository
}

type CreateRnaRequest struct {
	Name     string  `json:"name" validate:"required,max=200"`
	Location *string `json:"location,omitempty" validate:"omitempty,max=200"`
}

type CreateRnaResponse struct {
	Rna domain.Rna `json:"rna"`
}

func NewCreateRnaHandler(repository Repository) *CreateRnaHandler {
	return &CreateRnaHandler{
		repository: repository,
	}
}

func (h CreateRnaHandler) Handle(ctx context.Context, req *CreateRnaRequest) (*CreateRnaResponse, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(req); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			return nil, httperror.BadRequest(
				"rna.create.validation_failed",
				"Validation failed for the request",
				ve.Error(),
			)
		}

		return nil, httperror.InternalServerError(
			"rna.create.validation_error",
			"An unexpected validation error occurred",
			nil,
		)
	}

	rna, err := h.repository.CreateRna(ctx, domain.Rna{
		Name:       req.Name,
		Location:   req.Location,
		AssessorID: middleware.UserID(ctx),
		SyncStatus: domain.SyncStatusPending,
	})
	if err != nil {
		return nil, httperror.InternalServerError(
			"rna.create.create_failed",
			"An error occurred while creating the RNA",
			nil,
		)
	}

	return &CreateRnaResponse{
		Rna: rna,
	}, nil
}
