package catalog

import "fmt"

const (
	IssueOrphanSubCategory = "orphan_sub_category"
	IssueOrphanQuestion    = "orphan_question"
	IssueDuplicateID       = "duplicate_id"
)

// IntegrityIssue is a foreign key or identity problem in the catalog tables.
// The aggregator tolerates all of them; they are reported, not enforced.
type IntegrityIssue struct {
	Kind    string `json:"kind"`
	Table   string `json:"table"`
	ID      string `json:"id"`
	Message string `json:"message"`
}

func (i IntegrityIssue) String() string {
	return fmt.Sprintf("%s %s[%s]: %s", i.Kind, i.Table, i.ID, i.Message)
}

// Validate reports sub-categories pointing at unknown categories, questions
// pointing at unknown sub-categories and ids used more than once per table.
func (c *Catalog) Validate() []IntegrityIssue {
	var issues []IntegrityIssue

	categoryIDs := make(map[string]struct{}, len(c.Categories))
	for _, category := range c.Categories {
		if _, dup := categoryIDs[category.ID]; dup {
			issues = append(issues, duplicate(CategoriesFile, category.ID))
		}
		categoryIDs[category.ID] = struct{}{}
	}

	subCategoryIDs := make(map[string]struct{}, len(c.SubCategories))
	for _, subCategory := range c.SubCategories {
		if _, dup := subCategoryIDs[subCategory.ID]; dup {
			issues = append(issues, duplicate(SubCategoriesFile, subCategory.ID))
		}
		subCategoryIDs[subCategory.ID] = struct{}{}

		if _, ok := categoryIDs[subCategory.CategoryID]; !ok {
			issues = append(issues, IntegrityIssue{
				Kind:    IssueOrphanSubCategory,
				Table:   SubCategoriesFile,
				ID:      subCategory.ID,
				Message: fmt.Sprintf("category %q does not exist", subCategory.CategoryID),
			})
		}
	}

	questionIDs := make(map[string]struct{}, len(c.Questions))
	for _, question := range c.Questions {
		if _, dup := questionIDs[question.ID]; dup {
			issues = append(issues, duplicate(QuestionsFile, question.ID))
		}
		questionIDs[question.ID] = struct{}{}

		if _, ok := subCategoryIDs[question.SubCategoryID]; !ok {
			issues = append(issues, IntegrityIssue{
				Kind:    IssueOrphanQuestion,
				Table:   QuestionsFile,
				ID:      question.ID,
				Message: fmt.Sprintf("sub-category %q does not exist", question.SubCategoryID),
			})
		}
	}

	return issues
}

func duplicate(table, id string) IntegrityIssue {
	return IntegrityIssue{
		Kind:    IssueDuplicateID,
		Table:   table,
		ID:      id,
		Message: "id is used more than once",
	}
}
