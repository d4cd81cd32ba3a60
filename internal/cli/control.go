package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/micahjlucas/TransferProvider/internal/access"
	"github.com/micahjlucas/TransferProvider/internal/resource"
)

// NewPauseCommand creates the pause command.
func NewPauseCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pause <id>",
		Short: "Pause a transfer",
		Long: `Set a transfer's control flag to paused. The worker is signaled and
stops the transfer at its next checkpoint.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runControl(cmd, rootOpts, args[0], "paused",
				func(ctx context.Context, s *session, address string, caller access.Caller) (int64, error) {
					return s.p.Pause(ctx, address, caller)
				})
		},
	}
}

// NewResumeCommand creates the resume command.
func NewResumeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resume <id>",
		Short: "Resume a paused transfer",
		Long:  `Set a transfer's control flag to run and signal the worker.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runControl(cmd, rootOpts, args[0], "resumed",
				func(ctx context.Context, s *session, address string, caller access.Caller) (int64, error) {
					return s.p.Resume(ctx, address, caller)
				})
		},
	}
}

func runControl(cmd *cobra.Command, rootOpts *RootOptions, id, verb string,
	op func(context.Context, *session, string, access.Caller) (int64, error)) error {
	s, err := openSession(cmd, rootOpts)
	if err != nil {
		return err
	}
	defer s.Close()

	address := resource.CollectionPath + "/" + id
	count, err := op(cmd.Context(), s, address, s.caller)
	if err != nil {
		return WrapExitError(ExitFailure, "control change failed", err)
	}
	if count == 0 {
		return WrapExitError(ExitFailure, "no matching transfer", fmt.Errorf("%s did not change any row", address))
	}

	if rootOpts.Format == "json" {
		return s.out.Success(map[string]any{"address": address, "state": verb})
	}
	return s.out.Success(fmt.Sprintf("%s %s", address, verb))
}
