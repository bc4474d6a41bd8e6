// Package progress joins the static question catalog with the answers of one
// RNA and produces the per-category view models shown as completion progress.
package progress

import (
	"rna/domain"

	"github.com/shopspring/decimal"
)

// Overview is the form-wide completion of one RNA.
type Overview struct {
	TotalQuestionAmount    int             `json:"totalQuestionAmount"`
	AnsweredQuestionAmount int             `json:"answeredQuestionAmount"`
	CompletionPercent      decimal.Decimal `json:"completionPercent"`
}

// ComputeViewCategories counts, for every sub-category, its questions and how
// many of them have at least one answer, then sums those counts per category.
// Categories keep the input order and sub-categories keep their input order
// within a category. Sub-categories whose category is unknown are dropped.
// Inputs are only read.
func ComputeViewCategories(
	categories []domain.Category,
	subCategories []domain.SubCategory,
	questions []domain.Question,
	answers []domain.Answer,
) []domain.ViewCategory {
	answered := make(map[string]struct{}, len(answers))
	for _, answer := range answers {
		answered[answer.QuestionID] = struct{}{}
	}

	totals := make(map[string]int)
	answeredTotals := make(map[string]int)
	for _, question := range questions {
		totals[question.SubCategoryID]++
		if _, ok := answered[question.ID]; ok {
			answeredTotals[question.SubCategoryID]++
		}
	}

	byCategory := make(map[string][]domain.ViewSubCategory)
	for _, subCategory := range subCategories {
		byCategory[subCategory.CategoryID] = append(byCategory[subCategory.CategoryID], domain.ViewSubCategory{
			SubCategory:            subCategory,
			TotalQuestionAmount:    totals[subCategory.ID],
			AnsweredQuestionAmount: answeredTotals[subCategory.ID],
		})
	}

	viewCategories := make([]domain.ViewCategory, 0, len(categories))
	for _, category := range categories {
		children := byCategory[category.ID]

		viewCategory := domain.ViewCategory{
			Category:      category,
			SubCategories: make([]domain.ViewSubCategory, len(children)),
		}
		// Categories sharing an ID must not share a backing array.
		copy(viewCategory.SubCategories, children)

		for _, child := range children {
			viewCategory.TotalQuestionAmount += child.TotalQuestionAmount
			viewCategory.AnsweredQuestionAmount += child.AnsweredQuestionAmount
		}

		viewCategories = append(viewCategories, viewCategory)
	}

	return viewCategories
}

// Summarize adds up the counts of all categories.
func Summarize(viewCategories []domain.ViewCategory) Overview {
	var overview Overview
	for _, viewCategory := range viewCategories {
		overview.TotalQuestionAmount += viewCategory.TotalQuestionAmount
		overview.AnsweredQuestionAmount += viewCategory.AnsweredQuestionAmount
	}
	overview.CompletionPercent = Completion(overview.AnsweredQuestionAmount, overview.TotalQuestionAmount)

	return overview
}

// Completion returns answered/total as a whole percent, 0 when total is 0.
func Completion(answered, total int) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}

	return decimal.NewFromInt(int64(answered)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(0)
}
