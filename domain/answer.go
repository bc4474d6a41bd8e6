package domain

import "time"

// Answer is one response to a catalog question. RecordedAt is when the
// assessor captured it, which may be long before it reaches the server.
type Answer struct {
	ID         string    `json:"id" db:"id"`
	RnaID      string    `json:"rnaId" db:"rna_id"`
	QuestionID string    `json:"questionId" db:"question_id"`
	Value      string    `json:"value" db:"value"`
	Notes      string    `json:"notes" db:"notes"`
	RecordedAt time.Time `json:"recordedAt" db:"recorded_at"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}
