package progress

import (
	"fmt"
	"sync"
	"testing"

	"rna/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	categories    []domain.Category
	subCategories []domain.SubCategory
	questions     []domain.Question
}

func newFixture() fixture {
	return fixture{
		categories: []domain.Category{
			{ID: "C1", Name: "Shelter"},
			{ID: "C2", Name: "Water"},
		},
		subCategories: []domain.SubCategory{
			{ID: "S1", CategoryID: "C1", Name: "Housing"},
			{ID: "S2", CategoryID: "C1", Name: "Damage"},
			{ID: "S3", CategoryID: "C2", Name: "Access"},
		},
		questions: []domain.Question{
			{ID: "Q1", SubCategoryID: "S1"},
			{ID: "Q2", SubCategoryID: "S1"},
			{ID: "Q3", SubCategoryID: "S2"},
			{ID: "Q4", SubCategoryID: "S3"},
		},
	}
}

func (f fixture) compute(answers ...domain.Answer) []domain.ViewCategory {
	return ComputeViewCategories(f.categories, f.subCategories, f.questions, answers)
}

func answersFor(questionIDs ...string) []domain.Answer {
	answers := make([]domain.Answer, 0, len(questionIDs))
	for i, id := range questionIDs {
		answers = append(answers, domain.Answer{ID: fmt.Sprintf("A%d", i), RnaID: "R1", QuestionID: id})
	}
	return answers
}

type counts struct {
	total    int
	answered int
}

func countsByID(viewCategories []domain.ViewCategory) map[string]counts {
	out := make(map[string]counts)
	for _, c := range viewCategories {
		out[c.ID] = counts{c.TotalQuestionAmount, c.AnsweredQuestionAmount}
		for _, s := range c.SubCategories {
			out[s.ID] = counts{s.TotalQuestionAmount, s.AnsweredQuestionAmount}
		}
	}
	return out
}

func TestComputeViewCategories_Example(t *testing.T) {
	f := newFixture()

	got := f.compute(answersFor("Q1")...)

	require.Len(t, got, 2)
	c1 := got[0]
	assert.Equal(t, "C1", c1.ID)
	assert.Equal(t, 3, c1.TotalQuestionAmount)
	assert.Equal(t, 1, c1.AnsweredQuestionAmount)

	require.Len(t, c1.SubCategories, 2)
	assert.Equal(t, "S1", c1.SubCategories[0].ID)
	assert.Equal(t, 2, c1.SubCategories[0].TotalQuestionAmount)
	assert.Equal(t, 1, c1.SubCategories[0].AnsweredQuestionAmount)
	assert.Equal(t, "S2", c1.SubCategories[1].ID)
	assert.Equal(t, 1, c1.SubCategories[1].TotalQuestionAmount)
	assert.Equal(t, 0, c1.SubCategories[1].AnsweredQuestionAmount)
}

func TestComputeViewCategories_DuplicateAnswersCountOnce(t *testing.T) {
	f := newFixture()

	got := f.compute(answersFor("Q1", "Q1", "Q1")...)

	assert.Equal(t, 1, got[0].SubCategories[0].AnsweredQuestionAmount)
	assert.Equal(t, 1, got[0].AnsweredQuestionAmount)
}

func TestComputeViewCategories_EmptyAnswers(t *testing.T) {
	f := newFixture()

	for _, answers := range [][]domain.Answer{nil, {}} {
		got := ComputeViewCategories(f.categories, f.subCategories, f.questions, answers)
		for _, c := range got {
			assert.Zero(t, c.AnsweredQuestionAmount, c.ID)
			for _, s := range c.SubCategories {
				assert.Zero(t, s.AnsweredQuestionAmount, s.ID)
			}
		}
	}
}

func TestComputeViewCategories_SubCategoryWithoutQuestions(t *testing.T) {
	f := newFixture()
	f.subCategories = append(f.subCategories, domain.SubCategory{ID: "S4", CategoryID: "C2"})

	got := f.compute(answersFor("Q4")...)

	c2 := got[1]
	require.Len(t, c2.SubCategories, 2)
	assert.Equal(t, "S4", c2.SubCategories[1].ID)
	assert.Zero(t, c2.SubCategories[1].TotalQuestionAmount)
	assert.Zero(t, c2.SubCategories[1].AnsweredQuestionAmount)
	assert.Equal(t, 1, c2.TotalQuestionAmount)
	assert.Equal(t, 1, c2.AnsweredQuestionAmount)
}

func TestComputeViewCategories_CategoryWithoutSubCategories(t *testing.T) {
	f := newFixture()
	f.categories = append(f.categories, domain.Category{ID: "C3"})

	got := f.compute()

	require.Len(t, got, 3)
	assert.NotNil(t, got[2].SubCategories)
	assert.Empty(t, got[2].SubCategories)
	assert.Zero(t, got[2].TotalQuestionAmount)
}

func TestComputeViewCategories_OrphanSubCategoryIsDropped(t *testing.T) {
	f := newFixture()
	f.subCategories = append(f.subCategories, domain.SubCategory{ID: "S9", CategoryID: "missing"})
	f.questions = append(f.questions, domain.Question{ID: "Q9", SubCategoryID: "S9"})

	got := f.compute(answersFor("Q9")...)

	for _, c := range got {
		for _, s := range c.SubCategories {
			assert.NotEqual(t, "S9", s.ID)
		}
	}
	assert.Equal(t, 3, got[0].TotalQuestionAmount)
	assert.Equal(t, 1, got[1].TotalQuestionAmount)
	assert.Zero(t, got[0].AnsweredQuestionAmount+got[1].AnsweredQuestionAmount)
}

func TestComputeViewCategories_AnswersToUnknownQuestionsIgnored(t *testing.T) {
	f := newFixture()

	got := f.compute(answersFor("nope", "Q3")...)

	assert.Equal(t, 1, got[0].AnsweredQuestionAmount)
	assert.Equal(t, 0, got[1].AnsweredQuestionAmount)
}

func TestComputeViewCategories_KeepsCategoryOrder(t *testing.T) {
	f := newFixture()
	f.categories = []domain.Category{f.categories[1], f.categories[0]}

	got := f.compute()

	assert.Equal(t, "C2", got[0].ID)
	assert.Equal(t, "C1", got[1].ID)
}

func TestComputeViewCategories_OrderIndependent(t *testing.T) {
	f := newFixture()
	answers := answersFor("Q1", "Q4", "Q3", "Q1")
	want := countsByID(f.compute(answers...))

	reversedAnswers := make([]domain.Answer, len(answers))
	for i, a := range answers {
		reversedAnswers[len(answers)-1-i] = a
	}

	permuted := fixture{
		categories:    []domain.Category{f.categories[1], f.categories[0]},
		subCategories: []domain.SubCategory{f.subCategories[2], f.subCategories[1], f.subCategories[0]},
		questions:     []domain.Question{f.questions[3], f.questions[1], f.questions[2], f.questions[0]},
	}

	assert.Equal(t, want, countsByID(permuted.compute(reversedAnswers...)))
}

func TestComputeViewCategories_Invariants(t *testing.T) {
	f := newFixture()
	answerSets := [][]string{
		{},
		{"Q1"},
		{"Q1", "Q2", "Q3", "Q4"},
		{"Q2", "Q2", "Q4", "unknown"},
	}

	for _, ids := range answerSets {
		t.Run(fmt.Sprint(ids), func(t *testing.T) {
			for _, c := range f.compute(answersFor(ids...)...) {
				assert.LessOrEqual(t, c.AnsweredQuestionAmount, c.TotalQuestionAmount)

				var total, answered int
				for _, s := range c.SubCategories {
					assert.LessOrEqual(t, s.AnsweredQuestionAmount, s.TotalQuestionAmount)
					total += s.TotalQuestionAmount
					answered += s.AnsweredQuestionAmount
				}
				assert.Equal(t, total, c.TotalQuestionAmount)
				assert.Equal(t, answered, c.AnsweredQuestionAmount)
			}
		})
	}
}

func TestComputeViewCategories_DoesNotMutateInputs(t *testing.T) {
	f := newFixture()
	answers := answersFor("Q1", "Q2")
	before := newFixture()
	answersBefore := answersFor("Q1", "Q2")

	first := f.compute(answers...)
	second := f.compute(answers...)

	assert.Equal(t, before, f)
	assert.Equal(t, answersBefore, answers)
	assert.Equal(t, first, second)
}

func TestComputeViewCategories_Concurrent(t *testing.T) {
	f := newFixture()
	want := f.compute(answersFor("Q1", "Q4")...)

	var wg sync.WaitGroup
	results := make([][]domain.ViewCategory, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = f.compute(answersFor("Q1", "Q4")...)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestSummarize(t *testing.T) {
	f := newFixture()

	overview := Summarize(f.compute(answersFor("Q1", "Q4")...))

	assert.Equal(t, 4, overview.TotalQuestionAmount)
	assert.Equal(t, 2, overview.AnsweredQuestionAmount)
	assert.Equal(t, "50", overview.CompletionPercent.String())
}

func TestCompletion(t *testing.T) {
	tests := []struct {
		answered int
		total    int
		want     string
	}{
		{0, 0, "0"},
		{0, 4, "0"},
		{1, 3, "33"},
		{2, 3, "67"},
		{65, 100, "65"},
		{5, 5, "100"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.answered, tt.total), func(t *testing.T) {
			assert.Equal(t, tt.want, Completion(tt.answered, tt.total).String())
		})
	}
}
