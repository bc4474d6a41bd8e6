package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"rna/pkg/answers"
	"rna/pkg/severity"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newSeverityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "severity <rnaId>...",
		Short: "Rank RNAs by the severity of their answers",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSeverity,
	}

	cmd.Flags().String("api", "http://localhost:8080", "Base URL of the RNA API")
	cmd.Flags().Duration("timeout", defaultTimeout, "Request timeout")

	return cmd
}

func runSeverity(cmd *cobra.Command, args []string) error {
	apiURL, _ := cmd.Flags().GetString("api")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	cat, err := loadCatalog(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	client := answers.NewClient(apiURL, answers.WithTimeout(timeout))
	scorer := severity.NewScorer()

	scores := make(map[string]float64, len(args))
	for _, rnaID := range args {
		recorded, err := client.GetAnswers(ctx, rnaID)
		if err != nil {
			if errors.Is(err, answers.ErrNotFound) {
				return fmt.Errorf("rna %s not found", rnaID)
			}
			return fmt.Errorf("failed to load answers of %s: %w", rnaID, err)
		}
		scores[rnaID] = scorer.Rna(cat.Question, recorded)
	}

	return printSeverity(cmd.OutOrStdout(), scores)
}

func printSeverity(out io.Writer, scores map[string]float64) error {
	normalized := severity.Normalize(scores)

	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if normalized[ids[i]] != normalized[ids[j]] {
			return normalized[ids[i]] > normalized[ids[j]]
		}
		return ids[i] < ids[j]
	})

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(emptyStyle).
		Headers("RNA", "SCORE", "SEVERITY", "").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, id := range ids {
		t.Row(
			id,
			strconv.FormatFloat(scores[id], 'f', 2, 64),
			strconv.Itoa(normalized[id]),
			progressBar(decimal.NewFromInt(int64(normalized[id]))),
		)
	}

	_, err := lipgloss.Fprintln(out, t.Render())
	return err
}
