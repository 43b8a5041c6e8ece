package main

import (
	"encoding/json"
	"os"

	"bubbleviz/domain/table"
	"bubbleviz/internal/columnselector"
	"bubbleviz/internal/errors"
	"bubbleviz/internal/traces"

	"github.com/spf13/cobra"
)

func newSpecCmd() *cobra.Command {
	var query, databaseURL string
	var roles *roleFlags

	cmd := &cobra.Command{
		Use:   "spec [file]",
		Short: "Print the column selector and the selection for a table",
		Long: `Print the roles a host must ask for. With an input table the selection
is filled from the role flags, or suggested from the column kinds.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel := columnselector.New(nil)
			if len(args) > 0 || query != "" {
				tbl, err := fetchOne(cmd, args, query, databaseURL)
				if err != nil {
					return err
				}
				if err := roles.apply(sel, tbl); err != nil {
					return err
				}
			}
			return printJSON(sel.Spec())
		},
	}

	cmd.Flags().StringVar(&query, "sql", "", "read the table from this query")
	cmd.Flags().StringVar(&databaseURL, "database-url", "", "Postgres connection URL (default from DATABASE_URL)")
	roles = addRoleFlags(cmd)
	return cmd
}

func newSummaryCmd() *cobra.Command {
	var query, databaseURL string
	var sortGroups bool
	var roles *roleFlags

	cmd := &cobra.Command{
		Use:   "summary [file]",
		Short: "Print per category statistics of the chart a table would produce",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := fetchOne(cmd, args, query, databaseURL)
			if err != nil {
				return err
			}
			sel := columnselector.New(nil)
			if err := roles.apply(sel, tbl); err != nil {
				return err
			}
			cfg := sel.Config()
			trs, err := traces.BuildTracesWithOptions(tbl, &cfg, traces.Options{SortGroups: sortGroups})
			if errors.Is(err, traces.ErrNotReady) {
				return errors.NotReady("set --x, --y, --z and --category")
			}
			if err != nil {
				return err
			}
			return printJSON(traces.Summarize(trs))
		},
	}

	cmd.Flags().StringVar(&query, "sql", "", "read the table from this query")
	cmd.Flags().StringVar(&databaseURL, "database-url", "", "Postgres connection URL (default from DATABASE_URL)")
	cmd.Flags().BoolVar(&sortGroups, "sort", false, "order traces by category name")
	roles = addRoleFlags(cmd)
	return cmd
}

func fetchOne(cmd *cobra.Command, args []string, query, databaseURL string) (tbl *table.Table, err error) {
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	inputs, cleanup, err := resolveInputs(cmd.Context(), args, query, databaseURL)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	if len(inputs) > 1 {
		return nil, errors.InvalidInput("pass either a file or --sql")
	}
	tbl, err = inputs[0].source.Fetch(cmd.Context())
	if err != nil {
		return nil, err
	}
	if err := tbl.Validate(); err != nil {
		return nil, errors.InvalidInput(err.Error())
	}
	return tbl, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
