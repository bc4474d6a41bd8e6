package app

import (
	"context"

	"rna/pkg/catalog"
	"rna/pkg/progress"

	"github.com/shopspring/decimal"
)

type GetProgressHandler struct {
	repository Repository
	catalog    *catalog.Catalog
}

func NewGetProgressHandler(repository Repository, catalog *catalog.Catalog) *GetProgressHandler {
	return &GetProgressHandler{
		repository: repository,
		catalog:    catalog,
	}
}

type GetProgressRequest struct {
	RnaID string `params:"id"`
}

type CategoryProgress struct {
	ID                     string          `json:"id"`
	Name                   string          `json:"name"`
	TotalQuestionAmount    int             `json:"totalQuestionAmount"`
	AnsweredQuestionAmount int             `json:"answeredQuestionAmount"`
	CompletionPercent      decimal.Decimal `json:"completionPercent"`
}

type GetProgressResponse struct {
	RnaID      string             `json:"rnaId"`
	Overview   progress.Overview  `json:"overview"`
	Categories []CategoryProgress `json:"categories"`
}

func (h GetProgressHandler) Handle(ctx context.Context, req *GetProgressRequest) (*GetProgressResponse, error) {
	p, err := loadRnaProgress(ctx, h.repository, h.catalog, req.RnaID, "rna.progress")
	if err != nil {
		return nil, err
	}

	categories := make([]CategoryProgress, len(p.Categories))
	for i, category := range p.Categories {
		categories[i] = CategoryProgress{
			ID:                     category.ID,
			Name:                   category.Name,
			TotalQuestionAmount:    category.TotalQuestionAmount,
			AnsweredQuestionAmount: category.AnsweredQuestionAmount,
			CompletionPercent:      progress.Completion(category.AnsweredQuestionAmount, category.TotalQuestionAmount),
		}
	}

	return &GetProgressResponse{
		RnaID:      p.Rna.ID,
		Overview:   progress.Summarize(p.Categories),
		Categories: categories,
	}, nil
}
