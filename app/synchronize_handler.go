package app

import (
	"context"
	"time"

	"rna/domain"
	"rna/pkg/catalog"
	"rna/pkg/events"
	"rna/pkg/httperror"
	"rna/pkg/progress"

	"go.uber.org/zap"
)

// SynchronizeHandler refreshes the package of every downloaded RNA.
type SynchronizeHandler struct {
	repository     Repository
	catalog        *catalog.Catalog
	store          PackageStore
	eventPublisher events.Publisher
	now            func() time.Time
}

func NewSynchronizeHandler(repository Repository, catalog *catalog.Catalog, store PackageStore, eventPublisher events.Publisher) *SynchronizeHandler {
	return &SynchronizeHandler{
		repository:     repository,
		catalog:        catalog,
		store:          store,
		eventPublisher: eventPublisher,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

type SynchronizeRequest struct{}

type SynchronizationResult struct {
	RnaID      string `json:"rnaId"`
	SyncStatus string `json:"syncStatus"`
	PackageURL string `json:"packageUrl,omitempty"`
	Error      string `json:"error,omitempty"`
}

type SynchronizeResponse struct {
	Results      []SynchronizationResult `json:"results"`
	Synchronized int                     `json:"synchronized"`
	Failed       int                     `json:"failed"`
}

func (h *SynchronizeHandler) Handle(ctx context.Context, _ *SynchronizeRequest) (*SynchronizeResponse, error) {
	rnas, err := h.repository.GetDownloadedRnas(ctx)
	if err != nil {
		return nil, httperror.InternalServerError(
			"synchronization.index.failed",
			"Failed to retrieve downloaded RNAs",
			nil,
		)
	}

	response := &SynchronizeResponse{
		Results: make([]SynchronizationResult, 0, len(rnas)),
	}

	for _, rna := range rnas {
		if err := ctx.Err(); err != nil {
			return nil, httperror.InternalServerError(
				"synchronization.cancelled",
				"Synchronization was cancelled",
				nil,
			)
		}

		result := h.synchronize(ctx, rna)
		if result.SyncStatus == domain.SyncStatusSynced {
			response.Synchronized++
		} else {
			response.Failed++
		}
		response.Results = append(response.Results, result)
	}

	zap.L().Info("Synchronization finished",
		zap.Int("synchronized", response.Synchronized),
		zap.Int("failed", response.Failed),
	)

	return response, nil
}

func (h *SynchronizeHandler) synchronize(ctx context.Context, rna domain.Rna) SynchronizationResult {
	result := SynchronizationResult{RnaID: rna.ID, SyncStatus: domain.SyncStatusSynced}
	now := h.now()

	var overview progress.Overview
	p, err := loadRnaProgress(ctx, h.repository, h.catalog, rna.ID, "synchronization.rna")
	if err == nil {
		pkg := newRnaPackage(p, now)
		overview = pkg.Overview
		result.PackageURL, err = uploadPackage(h.store, pkg)
	}

	var synchronizedAt *time.Time
	if err != nil {
		zap.L().Warn("Failed to synchronize RNA", zap.String("rnaId", rna.ID), zap.Error(err))
		result.SyncStatus = domain.SyncStatusFailed
		result.Error = err.Error()
		result.PackageURL = ""
	} else {
		synchronizedAt = &now
	}

	if err := h.repository.UpdateRnaSyncStatus(ctx, rna.ID, result.SyncStatus, synchronizedAt); err != nil {
		zap.L().Error("Failed to update sync status", zap.String("rnaId", rna.ID), zap.Error(err))
		result.SyncStatus = domain.SyncStatusFailed
		result.Error = "failed to update sync status"
		return result
	}

	events.Emit(ctx, h.eventPublisher, events.RnaExchange, events.RnaSynchronizedEvent, events.RnaSynchronizedPayload{
		ID:                     rna.ID,
		SyncStatus:             result.SyncStatus,
		TotalQuestionAmount:    overview.TotalQuestionAmount,
		AnsweredQuestionAmount: overview.AnsweredQuestionAmount,
		SynchronizedAt:         now,
	})

	return result
}
