package domain

// ViewSubCategory is a sub-category with the question counts of one RNA.
type ViewSubCategory struct {
	SubCategory
	TotalQuestionAmount    int `json:"totalQuestionAmount"`
	AnsweredQuestionAmount int `json:"answeredQuestionAmount"`
}

// ViewCategory is a category with its sub-category views and their summed counts.
type ViewCategory struct {
	Category
	SubCategories          []ViewSubCategory `json:"subCategories"`
	TotalQuestionAmount    int               `json:"totalQuestionAmount"`
	AnsweredQuestionAmount int               `json:"answeredQuestionAmount"`
}
