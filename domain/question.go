package domain

import "strings"

const (
	QuestionTypeYesNo = "yes-no"
	QuestionTypeText  = "text"
)

type Question struct {
	ID            string `json:"id" validate:"required"`
	SubCategoryID string `json:"subCategoryId" validate:"required"`
	Text          string `json:"text" validate:"required"`
	Type          string `json:"type" validate:"required,oneof=yes-no text"`
	Order         int    `json:"order" validate:"gte=0"`
}

// AcceptsValue reports whether value is a well-formed answer: "true" or
// "false" for yes-no questions, any non-blank text otherwise.
func (q Question) AcceptsValue(value string) bool {
	switch q.Type {
	case QuestionTypeYesNo:
		return value == "true" || value == "false"
	default:
		return strings.TrimSpace(value) != ""
	}
}
