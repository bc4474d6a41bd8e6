package app

import (
	"context"
	"time"

	"rna/domain"
)

type Repository interface {
	Close() error
	GetRnas(ctx context.Context, limit, offset int) ([]domain.Rna, error)
	CountRnas(ctx context.Context) (int, error)
	GetRna(ctx context.Context, id string) (domain.Rna, error)
	CreateRna(ctx context.Context, rna domain.Rna) (domain.Rna, error)
	GetDownloadedRnas(ctx context.Context) ([]domain.Rna, error)
	// MarkRnaDownloaded returns domain.ErrAlreadyDownloaded when the RNA is
	// already marked, so exactly one concurrent caller wins.
	MarkRnaDownloaded(ctx context.Context, id string) (domain.Rna, error)
	UnmarkRnaDownloaded(ctx context.Context, id string) error
	UpdateRnaSyncStatus(ctx context.Context, id string, status string, synchronizedAt *time.Time) error
	GetAnswersByRnaID(ctx context.Context, rnaID string) ([]domain.Answer, error)
	// SaveAnswer upserts by id. It returns domain.ErrAnswerConflict when the id
	// belongs to another RNA and domain.ErrAnswerStale when the stored answer
	// was recorded later.
	SaveAnswer(ctx context.Context, answer domain.Answer) (domain.Answer, error)
}

// PackageStore keeps the downloadable RNA packages.
type PackageStore interface {
	Upload(key string, data []byte) error
	URL(key string) string
}
