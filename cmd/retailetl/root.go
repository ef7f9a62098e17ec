package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"retailetl/internal/config"
)

type rootFlags struct {
	config string
}

func newRootCmd() *cobra.Command {
	var flags rootFlags
	root := &cobra.Command{
		Use:   "retailetl",
		Short: "Retail batch ETL: clean, join, enrich, aggregate and load",
		Long: `retailetl reads raw sales and product files from a local folder or an S3
prefix, runs the cleaning, merge, enrichment and aggregation stages, and
replaces nine output tables in a postgres, sqlite or mssql warehouse.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&flags.config, "config", "c", "configs/retail.yaml", "pipeline config YAML path")

	root.AddCommand(newRunCmd(&flags), newValidateCmd(&flags))
	return root
}

// loadConfig decodes and lints the pipeline file, printing every issue to w.
// It fails when any issue is an error.
func loadConfig(path string, w io.Writer) (config.Pipeline, error) {
	p, err := config.Load(path)
	if err != nil {
		return config.Pipeline{}, err
	}
	return p, lint(p, w)
}

func lint(p config.Pipeline, w io.Writer) error {
	issues := config.ValidatePipeline(p)
	for _, iss := range issues {
		fmt.Fprintf(w, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		return errors.New("configuration is invalid")
	}
	return nil
}
