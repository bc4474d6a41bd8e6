package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCatalogCmd() *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Work with the question catalog",
	}

	catalogCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Report orphaned entries and duplicate ids in the catalog",
		Args:  cobra.NoArgs,
		RunE:  runCatalogCheck,
	})

	return catalogCmd
}

func runCatalogCheck(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog(cmd)
	if err != nil {
		return err
	}

	issues := cat.Validate()
	out := cmd.OutOrStdout()

	for _, issue := range issues {
		fmt.Fprintln(out, issue.String())
	}

	if len(issues) > 0 {
		return fmt.Errorf("catalog has %d integrity issue(s)", len(issues))
	}

	fmt.Fprintf(out, "catalog ok: %d categories, %d sub-categories, %d questions\n",
		len(cat.Categories), len(cat.SubCategories), len(cat.Questions))
	return nil
}
