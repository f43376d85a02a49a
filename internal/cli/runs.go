package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/cognicore/derisk/pkg/derisk/internalerr"
	"github.com/cognicore/derisk/pkg/derisk/store"
	"github.com/cognicore/derisk/pkg/derisk/store/sqlite"
	"github.com/cognicore/derisk/pkg/derisk/table"
)

func newRunsCmd() *cobra.Command {
	var storePath string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect classification runs recorded with --store",
	}
	cmd.PersistentFlags().StringVar(&storePath, "store", "", "SQLite database holding the runs")

	open := func(cmd *cobra.Command) (store.Store, error) {
		c, err := GetCLIContext(cmd)
		if err != nil {
			return nil, err
		}
		path := storePath
		if path == "" {
			path = c.Config.Store.Path
		}
		if path == "" {
			return nil, fmt.Errorf("--store is required: %w", internalerr.ErrInvalidInput)
		}
		return sqlite.OpenSQLite(cmd.Context(), path)
	}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := open(cmd)
			if err != nil {
				return err
			}
			defer st.Close()
			return listRuns(cmd.Context(), cmd, st, limit)
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to list (0 = all)")

	var noValue string
	showCmd := &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Show the results of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := open(cmd)
			if err != nil {
				return err
			}
			defer st.Close()
			return showRun(cmd.Context(), cmd, st, args[0], noValue)
		},
	}
	showCmd.Flags().StringVar(&noValue, "no-value", "-", "cell text for absent results")

	cmd.AddCommand(listCmd, showCmd)
	return cmd
}

func formatStamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(time.DateTime)
}

func listRuns(ctx context.Context, cmd *cobra.Command, st store.Store, limit int) error {
	runs, err := st.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	t := newTable(cmd.OutOrStdout(), "ID", "Started", "Duration", "Label", "Records", "Exact", "Override", "Partial", "Unmatched", "Rulebook")
	for _, r := range runs {
		t.Append([]string{
			r.ID,
			formatStamp(r.StartedAt),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String(),
			r.Label,
			strconv.Itoa(r.Records),
			strconv.Itoa(r.Summary.Exact),
			strconv.Itoa(r.Summary.Override),
			strconv.Itoa(r.Summary.Partial),
			strconv.Itoa(r.Summary.Unmatched),
			strconv.Itoa(r.Summary.RulebookMatched),
		})
	}
	t.Render()
	return nil
}

func showRun(ctx context.Context, cmd *cobra.Command, st store.Store, id, noValue string) error {
	run, err := st.GetRun(ctx, id)
	if err != nil {
		return err
	}
	rows, err := st.Results(ctx, id)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run %s  %s  %s  %d records\n\n", run.ID, formatStamp(run.StartedAt), run.Label, run.Records)

	t := newTable(w, table.ColTargetID, table.ColTargetColumn, table.ColTargetBusiness, table.ColTargetCategory,
		table.ColMatchedName, table.ColMatchedCategory, table.ColMatchedElement, "Source", "Field")
	for _, r := range rows {
		t.Append([]string{
			r.TargetID, r.ColumnName, r.BusinessName, r.DeclaredCategory,
			r.TermName.OrElse(noValue), r.Category.OrElse(noValue), r.RuleElement.OrElse(noValue),
			r.Source, r.Field,
		})
	}
	t.Render()
	return nil
}
