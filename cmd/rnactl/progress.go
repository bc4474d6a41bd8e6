package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"rna/domain"
	"rna/pkg/answers"
	"rna/pkg/progress"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newProgressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress <rnaId>",
		Short: "Show per-category progress of one RNA",
		Args:  cobra.ExactArgs(1),
		RunE:  runProgress,
	}

	cmd.Flags().String("api", "http://localhost:8080", "Base URL of the RNA API")
	cmd.Flags().Duration("timeout", defaultTimeout, "Request timeout")

	return cmd
}

func runProgress(cmd *cobra.Command, args []string) error {
	apiURL, _ := cmd.Flags().GetString("api")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	cat, err := loadCatalog(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	loader := answers.NewLoader(answers.NewClient(apiURL, answers.WithTimeout(timeout)))
	snapshot, err := loader.Load(ctx, args[0])
	if err != nil {
		if errors.Is(err, answers.ErrNotFound) {
			return fmt.Errorf("rna %s not found", args[0])
		}
		return fmt.Errorf("failed to load answers: %w", err)
	}

	categories := progress.ComputeViewCategories(cat.Categories, cat.SubCategories, cat.Questions, snapshot.Answers)
	return printProgress(cmd.OutOrStdout(), snapshot.RnaID, categories)
}

const barWidth = 20

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8B5CF6")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	totalStyle  = cellStyle.Bold(true)
	filledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#14B8A6"))
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#334155"))
)

func printProgress(out io.Writer, rnaID string, categories []domain.ViewCategory) error {
	overview := progress.Summarize(categories)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(emptyStyle).
		Headers("CATEGORY", "ANSWERED", "TOTAL", "COMPLETE", "PROGRESS").
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch row {
			case table.HeaderRow:
				return headerStyle
			case len(categories):
				return totalStyle
			default:
				return cellStyle
			}
		})

	for _, category := range categories {
		completion := progress.Completion(category.AnsweredQuestionAmount, category.TotalQuestionAmount)
		t.Row(
			category.Name,
			strconv.Itoa(category.AnsweredQuestionAmount),
			strconv.Itoa(category.TotalQuestionAmount),
			completion.String()+"%",
			progressBar(completion),
		)
	}
	t.Row(
		"TOTAL",
		strconv.Itoa(overview.AnsweredQuestionAmount),
		strconv.Itoa(overview.TotalQuestionAmount),
		overview.CompletionPercent.String()+"%",
		progressBar(overview.CompletionPercent),
	)

	_, err := lipgloss.Fprintln(out, headerStyle.UnsetPadding().Render("RNA "+rnaID)+"\n\n"+t.Render())
	return err
}

// progressBar draws percent, a value between 0 and 100, as a bar of barWidth cells.
func progressBar(percent decimal.Decimal) string {
	filled := int(percent.Mul(decimal.NewFromInt(barWidth)).Div(decimal.NewFromInt(100)).IntPart())
	filled = min(max(filled, 0), barWidth)

	return filledStyle.Render(strings.Repeat("█", filled)) + emptyStyle.Render(strings.Repeat("░", barWidth-filled))
}
