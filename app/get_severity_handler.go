package app

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"

	"rna/pkg/catalog"
	"rna/pkg/httperror"
	"rna/pkg/severity"
)

type GetSeverityHandler struct {
	repository Repository
	catalog    *catalog.Catalog
	scorer     *severity.Scorer
}

func NewGetSeverityHandler(repository Repository, catalog *catalog.Catalog, scorer *severity.Scorer) *GetSeverityHandler {
	return &GetSeverityHandler{
		repository: repository,
		catalog:    catalog,
		scorer:     scorer,
	}
}

// GetSeverityRequest selects RNAs by a comma separated id list. An empty list
// ranks every RNA.
type GetSeverityRequest struct {
	IDs string `query:"ids"`
}

type RnaSeverity struct {
	RnaID    string  `json:"rnaId"`
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	Severity int     `json:"severity"`
}

type GetSeverityResponse struct {
	Severities []RnaSeverity `json:"severities"`
}

func (h GetSeverityHandler) Handle(ctx context.Context, req *GetSeverityRequest) (*GetSeverityResponse, error) {
	names, err := h.selectRnas(ctx, req.IDs)
	if err != nil {
		return nil, err
	}

	scores := make(map[string]float64, len(names))
	for id := range names {
		answers, err := h.repository.GetAnswersByRnaID(ctx, id)
		if err != nil {
			return nil, httperror.InternalServerError(
				"rna.severity.failed",
				"Failed to retrieve answers",
				nil,
			)
		}
		scores[id] = h.scorer.Rna(h.catalog.Question, answers)
	}

	normalized := severity.Normalize(scores)

	severities := make([]RnaSeverity, 0, len(scores))
	for id, score := range scores {
		severities = append(severities, RnaSeverity{
			RnaID:    id,
			Name:     names[id],
			Score:    score,
			Severity: normalized[id],
		})
	}
	sort.Slice(severities, func(i, j int) bool {
		if severities[i].Severity != severities[j].Severity {
			return severities[i].Severity > severities[j].Severity
		}
		return severities[i].RnaID < severities[j].RnaID
	})

	return &GetSeverityResponse{Severities: severities}, nil
}

// selectRnas returns the names of the requested RNAs keyed by id.
func (h GetSeverityHandler) selectRnas(ctx context.Context, ids string) (map[string]string, error) {
	names := make(map[string]string)

	if strings.TrimSpace(ids) != "" {
		for _, id := range strings.Split(ids, ",") {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}

			rna, err := h.repository.GetRna(ctx, id)
			if errors.Is(err, sql.ErrNoRows) {
				return nil, httperror.NotFound(
					"rna.severity.not_found",
					"RNA not found",
					map[string]string{"id": id},
				)
			}
			if err != nil {
				return nil, httperror.InternalServerError(
					"rna.severity.failed",
					"Failed to retrieve RNA",
					nil,
				)
			}
			names[rna.ID] = rna.Name
		}
		return names, nil
	}

	for offset := 0; ; offset += maxPageSize {
		rnas, err := h.repository.GetRnas(ctx, maxPageSize, offset)
		if err != nil {
			return nil, httperror.InternalServerError(
				"rna.severity.failed",
				"Failed to retrieve RNAs",
				nil,
			)
		}
		for _, rna := range rnas {
			names[rna.ID] = rna.Name
		}
		if len(rnas) < maxPageSize {
			return names, nil
		}
	}
}
