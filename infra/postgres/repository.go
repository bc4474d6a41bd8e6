package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"rna/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	_ "github.com/lib/pq"
)

//go:embed schema.sql
var schema string

type PgRepository struct {
	db *sqlx.DB
}

func NewPgRepository(dsn string) (*PgRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	// 3 replicas x 15 stays well under the default max_connections of 100.
	db.SetMaxOpenConns(15)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	return &PgRepository{db: db}, nil
}

// Migrate creates the tables and indexes if they do not exist.
func (r *PgRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (r *PgRepository) Close() error {
	return r.db.Close()
}

func (r *PgRepository) GetPoolStats() map[string]interface{} {
	stats := r.db.Stats()
	return map[string]interface{}{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
		"max_idle_closed":      stats.MaxIdleClosed,
		"max_lifetime_closed":  stats.MaxLifetimeClosed,
	}
}

func (r *PgRepository) GetRnas(ctx context.Context, limit, offset int) ([]domain.Rna, error) {
	rnas := make([]domain.Rna, 0)
	query := `SELECT * FROM rnas ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`

	if err := r.db.SelectContext(ctx, &rnas, query, limit, offset); err != nil {
		return nil, err
	}

	return rnas, nil
}

func (r *PgRepository) CountRnas(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM rnas`)
	return count, err
}

func (r *PgRepository) GetRna(ctx context.Context, id string) (domain.Rna, error) {
	var rna domain.Rna
	err := r.db.GetContext(ctx, &rna, `SELECT * FROM rnas WHERE id = $1`, id)
	return rna, err
}

func (r *PgRepository) CreateRna(ctx context.Context, rna domain.Rna) (domain.Rna, error) {
	if rna.ID == "" {
		rna.ID = uuid.New().String()
	}
	if rna.SyncStatus == "" {
		rna.SyncStatus = domain.SyncStatusPending
	}

	query := `
		INSERT INTO rnas (id, name, location, assessor_id, is_downloaded, sync_status)
		VALUES (:id, :name, :location, :assessor_id, :is_downloaded, :sync_status)
		RETURNING *`

	return r.namedGetRna(ctx, query, rna)
}

func (r *PgRepository) GetDownloadedRnas(ctx context.Context) ([]domain.Rna, error) {
	rnas := make([]domain.Rna, 0)
	query := `SELECT * FROM rnas WHERE is_downloaded ORDER BY created_at DESC, id`

	if err := r.db.SelectContext(ctx, &rnas, query); err != nil {
		return nil, err
	}

	return rnas, nil
}

// MarkRnaDownloaded flips is_downloaded in one statement so concurrent
// callers cannot both succeed.
func (r *PgRepository) MarkRnaDownloaded(ctx context.Context, id string) (domain.Rna, error) {
	var rna domain.Rna
	query := `
		UPDATE rnas
		SET is_downloaded = TRUE, sync_status = $2, updated_at = NOW()
		WHERE id = $1 AND NOT is_downloaded
		RETURNING *`

	err := r.db.GetContext(ctx, &rna, query, id, domain.SyncStatusPending)
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := r.GetRna(ctx, id); getErr != nil {
			return domain.Rna{}, getErr
		}
		return domain.Rna{}, domain.ErrAlreadyDownloaded
	}

	return rna, err
}

func (r *PgRepository) UnmarkRnaDownloaded(ctx context.Context, id string) error {
	query := `UPDATE rnas SET is_downloaded = FALSE, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return requireOneRow(result)
}

// UpdateRnaSyncStatus keeps last_synchronized_at when synchronizedAt is nil.
func (r *PgRepository) UpdateRnaSyncStatus(ctx context.Context, id string, status string, synchronizedAt *time.Time) error {
	query := `
		UPDATE rnas
		SET sync_status = $2,
		    last_synchronized_at = COALESCE($3, last_synchronized_at),
		    updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status, synchronizedAt)
	if err != nil {
		return err
	}

	return requireOneRow(result)
}

func (r *PgRepository) GetAnswersByRnaID(ctx context.Context, rnaID string) ([]domain.Answer, error) {
	answers := make([]domain.Answer, 0)
	query := `SELECT * FROM answers WHERE rna_id = $1 ORDER BY created_at, id`

	if err := r.db.SelectContext(ctx, &answers, query, rnaID); err != nil {
		return nil, err
	}

	return answers, nil
}

// SaveAnswer upserts by id, so redelivered answers overwrite themselves. The
// update only applies within the same RNA and when the incoming answer was
// recorded no earlier than the stored one.
func (r *PgRepository) SaveAnswer(ctx context.Context, answer domain.Answer) (domain.Answer, error) {
	if answer.ID == "" {
		answer.ID = uuid.New().String()
	}
	if answer.RecordedAt.IsZero() {
		answer.RecordedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO answers (id, rna_id, question_id, value, notes, recorded_at)
		VALUES (:id, :rna_id, :question_id, :value, :notes, :recorded_at)
		ON CONFLICT (id) DO UPDATE SET
			question_id = EXCLUDED.question_id,
			value = EXCLUDED.value,
			notes = EXCLUDED.notes,
			recorded_at = EXCLUDED.recorded_at,
			updated_at = NOW()
		WHERE answers.rna_id = EXCLUDED.rna_id
		  AND answers.recorded_at <= EXCLUDED.recorded_at
		RETURNING *`

	saved, err := r.namedGetAnswer(ctx, query, answer)
	if !errors.Is(err, sql.ErrNoRows) {
		return saved, err
	}

	var stored domain.Answer
	if err := r.db.GetContext(ctx, &stored, `SELECT * FROM answers WHERE id = $1`, answer.ID); err != nil {
		return domain.Answer{}, err
	}
	if stored.RnaID != answer.RnaID {
		return domain.Answer{}, domain.ErrAnswerConflict
	}
	return domain.Answer{}, domain.ErrAnswerStale
}

func (r *PgRepository) namedGetAnswer(ctx context.Context, query string, answer domain.Answer) (domain.Answer, error) {
	rows, err := r.db.NamedQueryContext(ctx, query, answer)
	if err != nil {
		return domain.Answer{}, err
	}
	defer rows.Close()

	var saved domain.Answer
	if !rows.Next() {
		return saved, rowsErr(rows)
	}
	err = rows.StructScan(&saved)
	return saved, err
}

func (r *PgRepository) namedGetRna(ctx context.Context, query string, rna domain.Rna) (domain.Rna, error) {
	rows, err := r.db.NamedQueryContext(ctx, query, rna)
	if err != nil {
		return domain.Rna{}, err
	}
	defer rows.Close()

	var saved domain.Rna
	if !rows.Next() {
		return saved, rowsErr(rows)
	}
	err = rows.StructScan(&saved)
	return saved, err
}
