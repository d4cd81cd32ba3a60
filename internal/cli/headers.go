package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/micahjlucas/TransferProvider/internal/provider"
	"github.com/micahjlucas/TransferProvider/internal/resource"
	"github.com/micahjlucas/TransferProvider/internal/transfer"
)

// NewHeadersCommand creates the headers command.
func NewHeadersCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "headers <id>",
		Short: "Show the HTTP request headers of one transfer",
		Long: `Read the request headers attached to a transfer at creation, in the
order they were attached. A transfer with no headers, or no transfer at
all, prints nothing.

Example:
  transferd headers 12`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			address := resource.CollectionPath + "/" + args[0] + "/headers"
			rs, err := s.p.Query(cmd.Context(), address, s.caller, provider.QueryOptions{})
			if err != nil {
				return WrapExitError(ExitFailure, "query failed", err)
			}

			if rootOpts.Format == "json" {
				return s.out.Success(map[string]any{"address": rs.Address, "headers": rs.Rows})
			}
			for _, row := range rs.Rows {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n",
					row[transfer.HeaderColHeader], row[transfer.HeaderColValue])
			}
			return nil
		},
	}
}
