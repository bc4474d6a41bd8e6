package events

import "time"

// Domain constants
const (
	ServiceName    = "rna"
	AnswerExchange = "rna.answer"
	RnaExchange    = "rna.record"
)

// Event names
const (
	AnswerRecordedEvent  = "answer.recorded"
	RnaDownloadedEvent   = "rna.downloaded"
	RnaSynchronizedEvent = "rna.synchronized"
)

// Event versions
const (
	EventVersionV1 = "v1"
)

// AnswerRecordedPayload is emitted by the API and by field devices that
// recorded answers while offline.
type AnswerRecordedPayload struct {
	ID         string    `json:"id" validate:"required"`
	RnaID      string    `json:"rnaId" validate:"required"`
	QuestionID string    `json:"questionId" validate:"required"`
	Value      string    `json:"value"`
	Notes      string    `json:"notes"`
	RecordedBy string    `json:"recordedBy"`
	RecordedAt time.Time `json:"recordedAt"`
}

type RnaDownloadedPayload struct {
	ID           string    `json:"id"`
	PackageURL   string    `json:"packageUrl"`
	DownloadedBy string    `json:"downloadedBy"`
	DownloadedAt time.Time `json:"downloadedAt"`
}

type RnaSynchronizedPayload struct {
	ID                     string    `json:"id"`
	SyncStatus             string    `json:"syncStatus"`
	TotalQuestionAmount    int       `json:"totalQuestionAmount"`
	AnsweredQuestionAmount int       `json:"answeredQuestionAmount"`
	SynchronizedAt         time.Time `json:"synchronizedAt"`
}
