package domain

type Category struct {
	ID          string `json:"id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	IconSrc     string `json:"iconSrc"`
}
