package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/micahjlucas/TransferProvider/internal/resource"
	"github.com/micahjlucas/TransferProvider/internal/transfer"
)

// AddOptions holds flags for the add command.
type AddOptions struct {
	*RootOptions
	URI         string
	Title       string
	Description string
	MimeType    string
	Destination int64
	Visibility  int64
	Paused      bool
	Headers     []string
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Enqueue a new transfer",
		Long: `Create one transfer row in pending state and signal the worker.

Each --header flag attaches one HTTP request header as a single
"Name: Value" line.

Example:
  transferd add --uri https://example.com/a.bin --title "A"
  transferd add --uri https://example.com/b.bin --header "Authorization: Bearer t"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.URI, "uri", "", "source URI (required)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "display title")
	cmd.Flags().StringVar(&opts.Description, "description", "", "display description")
	cmd.Flags().StringVar(&opts.MimeType, "mime-type", "", "expected payload MIME type")
	cmd.Flags().Int64Var(&opts.Destination, "destination", 0, "destination class")
	cmd.Flags().Int64Var(&opts.Visibility, "visibility", 0, "visibility override")
	cmd.Flags().BoolVar(&opts.Paused, "paused", false, "create in paused state")
	cmd.Flags().StringArrayVar(&opts.Headers, "header", nil, `HTTP request header as "Name: Value" (repeatable)`)
	_ = cmd.MarkFlagRequired("uri")

	return cmd
}

func runAdd(cmd *cobra.Command, opts *AddOptions) error {
	s, err := openSession(cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	fields := transfer.Fields{transfer.ColURI: opts.URI}
	setIfChanged := func(flag, col string, value any) {
		if cmd.Flags().Changed(flag) {
			fields[col] = value
		}
	}
	setIfChanged("title", transfer.ColTitle, opts.Title)
	setIfChanged("description", transfer.ColDescription, opts.Description)
	setIfChanged("mime-type", transfer.ColMimeType, opts.MimeType)
	setIfChanged("destination", transfer.ColDestination, opts.Destination)
	setIfChanged("visibility", transfer.ColVisibility, opts.Visibility)
	if opts.Paused {
		fields[transfer.ColControl] = int64(transfer.ControlPaused)
	}
	for i, line := range opts.Headers {
		fields[fmt.Sprintf("%s%03d", transfer.HeaderFieldPrefix, i)] = line
	}

	addr, err := s.p.Create(cmd.Context(), resource.CollectionPath, s.caller, fields)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to create transfer", err)
	}

	if opts.Format == "json" {
		return s.out.Success(map[string]any{"address": addr})
	}
	return s.out.Success(addr)
}
