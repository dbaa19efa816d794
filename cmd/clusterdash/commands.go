package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"clusterdash/internal/formatter"
	"clusterdash/internal/validator"
	"clusterdash/internal/views"
)

// newSummaryCmd creates the summary subcommand.
func newSummaryCmd(a *app) *cobra.Command {
	var weeks []string
	var plain bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print per-week collection tables",
		Long:  "Print every cluster of each week with its article count and collection breakdown.",
		RunE: func(cmd *cobra.Command, args []string) error {
			dc, err := a.loadDataset()
			if err != nil {
				return err
			}

			s := formatter.Summary{Styled: !plain && isTerminal(cmd.OutOrStdout())}

			return s.Write(cmd.OutOrStdout(), dc, weeks...)
		},
	}

	cmd.Flags().StringArrayVarP(&weeks, "week", "w", nil, "Week to print (repeatable, default all)")
	cmd.Flags().BoolVar(&plain, "plain", false, "Disable colours")

	return cmd
}

// newValidateCmd creates the validate subcommand.
func newValidateCmd(a *app) *cobra.Command {
	var strict bool
	var hash string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the dataset for problems",
		Long:  "Report malformed articles, missing summaries and unrecognized collections. Exits non-zero on errors.",
		RunE: func(cmd *cobra.Command, args []string) error {
			dc, err := a.loadDataset()
			if err != nil {
				return err
			}

			v := validator.NewDatasetValidator(validator.Options{Strict: strict})
			result := v.Validate(dc)

			if hash != "" {
				content, err := os.ReadFile(a.cfg.Dataset.Path)
				if err != nil {
					return fmt.Errorf("read dataset: %w", err)
				}

				if integrity := v.ValidateIntegrity(hash, content); !integrity.IsValid {
					result.Errors = append(result.Errors, integrity.Errors...)
					result.IsValid = false
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, result.String())
			fmt.Fprintf(out, "Hash: %s\n", dc.Meta.Hash)
			result.PrintErrors(out)
			result.PrintWarnings(out)

			if !result.IsValid {
				return errInvalidDataset
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Treat unrecognized collections as errors")
	cmd.Flags().StringVar(&hash, "hash", "", "Expected SHA-256 of the dataset file")

	return cmd
}

// newExportCmd creates the export subcommand.
func newExportCmd(a *app) *cobra.Command {
	var week string
	var cluster int
	var collections []string
	var out string
	var duplicate bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write one cluster's articles as CSV",
		Long:  "Write the articles of one cluster, filtered by collection, in the same CSV format as the dashboard download.",
		RunE: func(cmd *cobra.Command, args []string) error {
			dc, err := a.loadDataset()
			if err != nil {
				return err
			}

			if week == "" {
				week = dc.DefaultWeek()
			}

			c, err := dc.Cluster(week, cluster)
			if err != nil {
				return err
			}

			selected, err := views.ParseSelection(collections)
			if err != nil {
				return err
			}

			if out == "-" {
				return views.WriteCSV(cmd.OutOrStdout(), c, selected)
			}

			if out == "" {
				out = views.ExportFileName(c, week, duplicate)
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}

			if err := views.WriteCSV(f, c, selected); err != nil {
				f.Close()
				return err
			}

			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", out, err)
			}

			a.log.Info("exported cluster", "week", week, "cluster", cluster, "file", out)

			return nil
		},
	}

	cmd.Flags().StringVarP(&week, "week", "w", "", "Week name (default first week)")
	cmd.Flags().IntVar(&cluster, "cluster", 0, "Cluster index within the week")
	cmd.Flags().StringArrayVar(&collections, "collection", nil, "Collection to include (repeatable, default all)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file, - for stdout (default <cluster>_week_<week>.csv)")
	cmd.Flags().BoolVar(&duplicate, "duplicate", false, "Use the second-set file name")

	return cmd
}

// newConfigCmd creates the config subcommand.
func newConfigCmd(a *app) *cobra.Command {
	var write string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long:  "Print the configuration after file, environment and flag overrides as YAML, or save it with --write.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if write != "" {
				if err := a.cfg.SaveConfig(write); err != nil {
					return err
				}

				a.log.Info("saved configuration", "file", write)

				return nil
			}

			data, err := yaml.Marshal(a.cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}

			_, err = cmd.OutOrStdout().Write(data)

			return err
		},
	}

	cmd.Flags().StringVar(&write, "write", "", "Save the configuration to this YAML file instead of printing it")

	return cmd
}

// newFmtCmd creates the fmt subcommand.
func newFmtCmd() *cobra.Command {
	var inPlace bool

	cmd := &cobra.Command{
		Use:   "fmt <file>...",
		Short: "Realign markdown tables in report files",
		Long:  "Realign every pipe table in the given markdown files by display width, printing the result or rewriting the files with -w.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				content, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}

				formatted := formatter.FormatMarkdown(string(content))

				if !inPlace {
					fmt.Fprint(cmd.OutOrStdout(), formatted)
					continue
				}

				if formatted == string(content) {
					continue
				}

				if err := os.WriteFile(path, []byte(formatted), 0644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&inPlace, "write", "w", false, "Rewrite files in place")

	return cmd
}
