package app

import (
	"context"

	"rna/domain"
	"rna/pkg/catalog"
)

type GetCategoriesHandler struct {
	repository Repository
	catalog    *catalog.Catalog
}

func NewGetCategoriesHandler(repository Repository, catalog *catalog.Catalog) *GetCategoriesHandler {
	return &GetCategoriesHandler{
		repository: repository,
		catalog:    catalog,
	}
}

type GetCategoriesRequest struct {
	RnaID string `params:"id"`
}

type GetCategoriesResponse struct {
	RnaID      string                `json:"rnaId"`
	Categories []domain.ViewCategory `json:"categories"`
}

func (h GetCategoriesHandler) Handle(ctx context.Context, req *GetCategoriesRequest) (*GetCategoriesResponse, error) {
	p, err := loadRnaProgress(ctx, h.repository, h.catalog, req.RnaID, "rna.categories")
	if err != nil {
		return nil, err
	}

	return &GetCategoriesResponse{
		RnaID:      p.Rna.ID,
		Categories: p.Categories,
	}, nil
}
