package domain

import "time"

const (
	SyncStatusPending = "pending"
	SyncStatusSynced  = "synced"
	SyncStatusFailed  = "failed"
)

type Rna struct {
	ID                 string     `json:"id" db:"id"`
	Name               string     `json:"name" db:"name"`
	Location           *string    `json:"location" db:"location"`
	AssessorID         string     `json:"assessorId" db:"assessor_id"`
	IsDownloaded       bool       `json:"isDownloaded" db:"is_downloaded"`
	SyncStatus         string     `json:"syncStatus" db:"sync_status"`
	LastSynchronizedAt *time.Time `json:"lastSynchronizedAt" db:"last_synchronized_at"`
	CreatedAt          time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time  `json:"updatedAt" db:"updated_at"`
}
