package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/micahjlucas/TransferProvider/internal/provider"
	"github.com/micahjlucas/TransferProvider/internal/resource"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Columns string
	Filter  string
	Sort    string
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list [id]",
		Short: "List transfers",
		Long: `Read transfer rows, all of them or one by identifier.

Columns, filter and sort are checked against the readable column set;
asking for anything else rejects the whole query.

Example:
  transferd list
  transferd list 12 --columns id,status,title
  transferd list --filter "status >= 200" --sort "last_modification DESC"`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.Columns, "columns", "", "comma-separated columns to return")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "row filter over readable columns")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "sort expression, e.g. \"status DESC\"")

	return cmd
}

func runList(cmd *cobra.Command, opts *ListOptions, args []string) error {
	s, err := openSession(cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	address := resource.CollectionPath
	if len(args) == 1 {
		address = resource.CollectionPath + "/" + args[0]
	}

	var projection []string
	if opts.Columns != "" {
		for _, col := range strings.Split(opts.Columns, ",") {
			projection = append(projection, strings.TrimSpace(col))
		}
	}

	rs, err := s.p.Query(cmd.Context(), address, s.caller, provider.QueryOptions{
		Projection: projection,
		Filter:     opts.Filter,
		Sort:       opts.Sort,
	})
	if err != nil {
		return WrapExitError(ExitFailure, "query failed", err)
	}

	if opts.Format == "json" {
		return s.out.Success(map[string]any{
			"address": rs.Address,
			"columns": rs.Columns,
			"rows":    rs.Rows,
		})
	}
	return printRowSet(cmd, rs)
}

// printRowSet renders a result as an aligned table, one line per row, NULL
// values as "-".
func printRowSet(cmd *cobra.Command, rs *provider.RowSet) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(rs.Columns, "\t")))
	for _, row := range rs.Rows {
		cells := make([]string, len(rs.Columns))
		for i, col := range rs.Columns {
			if row[col] == nil {
				cells[i] = "-"
				continue
			}
			cells[i] = fmt.Sprint(row[col])
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	return w.Flush()
}
