package domain

import "errors"

var (
	// ErrAnswerConflict is returned when an answer id is already used by another RNA.
	ErrAnswerConflict = errors.New("answer id belongs to another rna")
	// ErrAnswerStale is returned when the stored answer was recorded after the incoming one.
	ErrAnswerStale = errors.New("answer is older than the stored one")
	// ErrAlreadyDownloaded is returned when an RNA is marked downloaded twice.
	ErrAlreadyDownloaded = errors.New("rna is already downloaded")
)
