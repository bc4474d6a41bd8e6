package app

import (
	"context"
	"math"

	"rna/domain"
	"rna/pkg/httperror"
)

const maxPageSize = 100

type GetRnasHandler struct {
	repository Repository
}

func NewGetRnasHandler(repository Repository) *GetRnasHandler {
	return &GetRnasHandler{
		repository: repository,
	}
}

type GetRnasRequest struct {
	Page     int `query:"page"`
	PageSize int `query:"pageSize"`
}

type GetRnasResponse struct {
	Rnas       []domain.Rna `json:"rnas"`
	Page       int          `json:"page"`
	PageSize   int          `json:"pageSize"`
	TotalItems int          `json:"totalItems"`
	TotalPages int          `json:"totalPages"`
}

func (h GetRnasHandler) Handle(ctx context.Context, req *GetRnasRequest) (*GetRnasResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}

	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 10
	}
	pageSize = min(pageSize, maxPageSize)

	if page-1 > math.MaxInt32/pageSize {
		return nil, httperror.BadRequest(
			"rna.index.invalid_page",
			"Page is out of range",
			map[string]int{"page": page, "pageSize": pageSize},
		)
	}
	offset := (page - 1) * pageSize

	rnas, err := h.repository.GetRnas(ctx, pageSize, offset)
	if err != nil {
		return nil, httperror.InternalServerError(
			"rna.index.failed",
			"Failed to retrieve RNAs",
			nil,
		)
	}

	totalItems, err := h.repository.CountRnas(ctx)
	if err != nil {
		return nil, httperror.InternalServerError(
			"rna.count_rnas.failed",
			"Failed to count RNAs",
			nil,
		)
	}

	totalPages := (totalItems + pageSize - 1) / pageSize

	return &GetRnasResponse{
		Rnas:       rnas,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}, nil
}
