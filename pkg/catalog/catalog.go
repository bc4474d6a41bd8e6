// Package catalog loads the static question catalog: categories,
// sub-categories and questions. The tables never change at runtime and are
// handed to the progress aggregator explicitly.
package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"

	"rna/domain"

	"github.com/go-playground/validator/v10"
)

const (
	CategoriesFile    = "categories.json"
	SubCategoriesFile = "sub-categories.json"
	QuestionsFile     = "questions.json"
)

//go:embed data/*.json
var embedded embed.FS

type Catalog struct {
	Categories    []domain.Category    `json:"categories"`
	SubCategories []domain.SubCategory `json:"subCategories"`
	Questions     []domain.Question    `json:"questions"`

	questions map[string]int
}

// Embedded returns the catalog compiled into the binary.
func Embedded() (*Catalog, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded catalog: %w", err)
	}

	return Load(sub)
}

// FromDir loads the catalog from dir, or the embedded one when dir is empty.
func FromDir(dir string) (*Catalog, error) {
	if dir == "" {
		return Embedded()
	}

	return Load(os.DirFS(dir))
}

// Load reads the three catalog tables from the root of fsys and validates
// every entry.
func Load(fsys fs.FS) (*Catalog, error) {
	var c Catalog

	if err := readTable(fsys, CategoriesFile, &c.Categories); err != nil {
		return nil, err
	}
	if err := readTable(fsys, SubCategoriesFile, &c.SubCategories); err != nil {
		return nil, err
	}
	if err := readTable(fsys, QuestionsFile, &c.Questions); err != nil {
		return nil, err
	}

	if err := c.validateEntries(); err != nil {
		return nil, err
	}

	c.index()

	return &c, nil
}

// New builds a catalog from in-memory tables.
func New(categories []domain.Category, subCategories []domain.SubCategory, questions []domain.Question) *Catalog {
	c := &Catalog{
		Categories:    categories,
		SubCategories: subCategories,
		Questions:     questions,
	}
	c.index()

	return c
}

func (c *Catalog) QuestionExists(id string) bool {
	_, ok := c.questions[id]
	return ok
}

func (c *Catalog) Question(id string) (domain.Question, bool) {
	i, ok := c.questions[id]
	if !ok {
		return domain.Question{}, false
	}

	return c.Questions[i], true
}

// Category returns the category with the given id.
func (c *Catalog) Category(id string) (domain.Category, bool) {
	for _, category := range c.Categories {
		if category.ID == id {
			return category, true
		}
	}

	return domain.Category{}, false
}

func (c *Catalog) index() {
	c.questions = make(map[string]int, len(c.Questions))
	for i, question := range c.Questions {
		if _, dup := c.questions[question.ID]; !dup {
			c.questions[question.ID] = i
		}
	}
}

func (c *Catalog) validateEntries() error {
	validate := validator.New(validator.WithRequiredStructEnabled())

	for i := range c.Categories {
		if err := validate.Struct(c.Categories[i]); err != nil {
			return fmt.Errorf("%s entry %d: %w", CategoriesFile, i, err)
		}
	}
	for i := range c.SubCategories {
		if err := validate.Struct(c.SubCategories[i]); err != nil {
			return fmt.Errorf("%s entry %d: %w", SubCategoriesFile, i, err)
		}
	}
	for i := range c.Questions {
		if err := validate.Struct(c.Questions[i]); err != nil {
			return fmt.Errorf("%s entry %d: %w", QuestionsFile, i, err)
		}
	}

	return nil
}

func readTable(fsys fs.FS, name string, out any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}

	return nil
}
