package main

import (
	"time"

	"rna/pkg/catalog"
	"rna/pkg/logger"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "rnactl",
		Short:         "Inspect rapid needs assessments",
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level, _ := cmd.Flags().GetString("log-level")
			logger.Init("rnactl", level)
		},
	}

	rootCmd.PersistentFlags().String("catalog", "", "Directory holding the catalog JSON tables (defaults to the embedded catalog)")
	rootCmd.PersistentFlags().String("log-level", "error", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(newProgressCmd())
	rootCmd.AddCommand(newSeverityCmd())
	rootCmd.AddCommand(newCatalogCmd())

	return rootCmd
}

func loadCatalog(cmd *cobra.Command) (*catalog.Catalog, error) {
	dir, _ := cmd.Flags().GetString("catalog")
	return catalog.FromDir(dir)
}

const defaultTimeout = 15 * time.Second
