package app

import (
	"context"

	"rna/domain"
	"rna/pkg/catalog"
	"rna/pkg/httperror"
)

type GetCategoryHandler struct {
	repository Repository
	catalog    *catalog.Catalog
}

func NewGetCategoryHandler(repository Repository, catalog *catalog.Catalog) *GetCategoryHandler {
	return &GetCategoryHandler{
		repository: repository,
		catalog:    catalog,
	}
}

type GetCategoryRequest struct {
	RnaID      string `params:"id"`
	CategoryID string `params:"categoryId"`
}

type GetCategoryResponse struct {
	RnaID    string              `json:"rnaId"`
	Category domain.ViewCategory `json:"category"`
}

func (h GetCategoryHandler) Handle(ctx context.Context, req *GetCategoryRequest) (*GetCategoryResponse, error) {
	if _, ok := h.catalog.Category(req.CategoryID); !ok {
		return nil, httperror.NotFound(
			"rna.category.not_found",
			"Category not found",
			nil,
		)
	}

	p, err := loadRnaProgress(ctx, h.repository, h.catalog, req.RnaID, "rna.category")
	if err != nil {
		return nil, err
	}

	for _, category := range p.Categories {
		if category.ID == req.CategoryID {
			return &GetCategoryResponse{
				RnaID:    p.Rna.ID,
				Category: category,
			}, nil
		}
	}

	return nil, httperror.NotFound(
		"rna.category.not_found",
		"Category not found",
		nil,
	)
}
