// Package severity ranks RNAs by how severe their answers read. A "yes" with
// no notes counts as fully severe, while notes and free-text answers are
// weighed by their sentiment.
package severity

import (
	"math"
	"strings"

	"rna/domain"

	"github.com/jonreiter/govader"
)

// Scorer turns answers into raw severity scores. It is safe for concurrent
// use once built.
type Scorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewScorer() *Scorer {
	return &Scorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Text scores a note between 0 and 1. Negative, matter-of-fact text scores
// highest: 80% comes from the inverted compound polarity and 20% from the
// neutral share of the text.
func (s *Scorer) Text(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}

	sentiment := s.analyzer.PolarityScores(text)
	return 0.8*((1-sentiment.Compound)/2) + 0.2*sentiment.Neutral
}

// Answer scores one answer against its question.
func (s *Scorer) Answer(question domain.Question, answer domain.Answer) float64 {
	switch question.Type {
	case domain.QuestionTypeYesNo:
		if answer.Value != "true" {
			return 0
		}
		if strings.TrimSpace(answer.Notes) == "" {
			return 1
		}
		return s.Text(answer.Notes)
	case domain.QuestionTypeText:
		return s.Text(answer.Value)
	default:
		return 0
	}
}

// Rna sums the scores of all answers whose question lookup succeeds.
func (s *Scorer) Rna(lookup func(id string) (domain.Question, bool), answers []domain.Answer) float64 {
	var total float64
	for _, answer := range answers {
		question, ok := lookup(answer.QuestionID)
		if !ok {
			continue
		}
		total += s.Answer(question, answer)
	}
	return total
}

// Normalize scales scores to 0-100 relative to the highest one, rounding up.
// When every score is zero all results are zero.
func Normalize(scores map[string]float64) map[string]int {
	var highest float64
	for _, score := range scores {
		highest = max(highest, score)
	}

	normalized := make(map[string]int, len(scores))
	for id, score := range scores {
		if highest <= 0 || score <= 0 {
			normalized[id] = 0
			continue
		}
		normalized[id] = min(100, int(math.Ceil(score/highest*100)))
	}

	return normalized
}
