package app

import (
	"context"
	"errors"
	"time"

	"rna/domain"
	"rna/internal/middleware"
	"rna/pkg/catalog"
	"rna/pkg/events"
	"rna/pkg/httperror"

	"go.uber.org/zap"
)

type DownloadRnaHandler struct {
	repository     Repository
	catalog        *catalog.Catalog
	store          PackageStore
	eventPublisher events.Publisher
}

func NewDownloadRnaHandler(repository Repository, catalog *catalog.Catalog, store PackageStore, eventPublisher events.Publisher) *DownloadRnaHandler {
	return &DownloadRnaHandler{
		repository:     repository,
		catalog:        catalog,
		store:          store,
		eventPublisher: eventPublisher,
	}
}

type DownloadRnaRequest struct {
	RnaID string `params:"id"`
}

type DownloadRnaResponse struct {
	Rna        domain.Rna `json:"rna"`
	PackageURL string     `json:"packageUrl"`
	Message    string     `json:"message"`
}

func (h *DownloadRnaHandler) Handle(ctx context.Context, req *DownloadRnaRequest) (*DownloadRnaResponse, error) {
	p, err := loadRnaProgress(ctx, h.repository, h.catalog, req.RnaID, "rna.download")
	if err != nil {
		return nil, err
	}

	rna, err := h.repository.MarkRnaDownloaded(ctx, p.Rna.ID)
	if errors.Is(err, domain.ErrAlreadyDownloaded) {
		return nil, httperror.Conflict(
			"rna.download.already_downloaded",
			"RNA is already downloaded",
			nil,
		)
	}
	if err != nil {
		return nil, httperror.InternalServerError(
			"rna.download.update_failed",
			"Failed to mark RNA as downloaded",
			nil,
		)
	}
	p.Rna = rna

	now := time.Now().UTC()

	packageURL, err := uploadPackage(h.store, newRnaPackage(p, now))
	if err != nil {
		zap.L().Error("Failed to store RNA package", zap.String("rnaId", rna.ID), zap.Error(err))
		if rollbackErr := h.repository.UnmarkRnaDownloaded(ctx, rna.ID); rollbackErr != nil {
			zap.L().Error("Failed to roll back RNA download", zap.String("rnaId", rna.ID), zap.Error(rollbackErr))
		}
		return nil, httperror.InternalServerError(
			"rna.download.upload_failed",
			"Failed to store RNA package",
			nil,
		)
	}

	events.Emit(ctx, h.eventPublisher, events.RnaExchange, events.RnaDownloadedEvent, events.RnaDownloadedPayload{
		ID:           rna.ID,
		PackageURL:   packageURL,
		DownloadedBy: middleware.UserID(ctx),
		DownloadedAt: now,
	})

	return &DownloadRnaResponse{
		Rna:        rna,
		PackageURL: packageURL,
		Message:    "This RNA will now update on Synchronization",
	}, nil
}
