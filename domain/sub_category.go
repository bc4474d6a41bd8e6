package domain

type SubCategory struct {
	ID          string `json:"id" validate:"required"`
	CategoryID  string `json:"categoryId" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}
