package app

import (
	"context"

	"rna/pkg/catalog"
)

type GetCatalogHandler struct {
	catalog *catalog.Catalog
}

func NewGetCatalogHandler(catalog *catalog.Catalog) *GetCatalogHandler {
	return &GetCatalogHandler{
		catalog: catalog,
	}
}

type GetCatalogRequest struct{}

type GetCatalogResponse struct {
	*catalog.Catalog
}

func (h GetCatalogHandler) Handle(_ context.Context, _ *GetCatalogRequest) (*GetCatalogResponse, error) {
	return &GetCatalogResponse{Catalog: h.catalog}, nil
}
