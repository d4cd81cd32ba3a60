package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/micahjlucas/TransferProvider/internal/resource"
)

// RemoveOptions holds flags for the rm command.
type RemoveOptions struct {
	*RootOptions
	Filter string
}

// NewRemoveCommand creates the rm command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RemoveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete transfers and their request headers",
		Long: `Delete one transfer by identifier, or every transfer matching --filter.
Request headers are removed with their rows. With neither an id nor a
filter, nothing matches and nothing is deleted.

Example:
  transferd rm 12
  transferd rm --filter "status = 490"`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts.RootOptions)
			if err != nil {
				return err
			}
			defer s.Close()

			if len(args) == 0 && opts.Filter == "" {
				return WrapExitError(ExitCommandError, "nothing to delete", fmt.Errorf("an id or --filter is required"))
			}

			address := resource.CollectionPath
			if len(args) == 1 {
				address = resource.CollectionPath + "/" + args[0]
			}

			count, err := s.p.Delete(cmd.Context(), address, s.caller, opts.Filter, nil)
			if err != nil {
				return WrapExitError(ExitFailure, "delete failed", err)
			}

			if opts.Format == "json" {
				return s.out.Success(map[string]any{"deleted": count})
			}
			return s.out.Success(fmt.Sprintf("deleted %d transfer(s)", count))
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "delete every transfer matching this filter")

	return cmd
}
