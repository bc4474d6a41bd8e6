package app

import (
	"context"
	"database/sql"
	"errors"

	"rna/domain"
	"rna/pkg/catalog"
	"rna/pkg/httperror"
	"rna/pkg/progress"

	"go.uber.org/zap"
)

type rnaProgress struct {
	Rna        domain.Rna
	Answers    []domain.Answer
	Categories []domain.ViewCategory
}

// loadRnaProgress resolves the RNA and its answers before aggregating, so the
// aggregator never sees a half-loaded subject. codePrefix namespaces the
// error codes, e.g. "rna.categories".
func loadRnaProgress(ctx context.Context, repository Repository, cat *catalog.Catalog, rnaID, codePrefix string) (*rnaProgress, error) {
	rna, err := repository.GetRna(ctx, rnaID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound(
				codePrefix+".not_found",
				"RNA not found",
				nil,
			)
		}

		zap.L().Error("Failed to get RNA", zap.String("rnaId", rnaID), zap.Error(err))
		return nil, httperror.InternalServerError(
			codePrefix+".failed",
			"Failed to retrieve RNA",
			nil,
		)
	}

	answers, err := repository.GetAnswersByRnaID(ctx, rna.ID)
	if err != nil {
		zap.L().Error("Failed to get answers", zap.String("rnaId", rnaID), zap.Error(err))
		return nil, httperror.InternalServerError(
			codePrefix+".answers_failed",
			"Failed to retrieve answers",
			nil,
		)
	}

	return &rnaProgress{
		Rna:        rna,
		Answers:    answers,
		Categories: progress.ComputeViewCategories(cat.Categories, cat.SubCategories, cat.Questions, answers),
	}, nil
}
