package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/micahjlucas/TransferProvider/internal/store"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		Long: `Open the database, creating it if absent, and bring its schema to the
current version. Opening always migrates; this command exists to do it
explicitly and report the resulting version.

Example:
  transferd migrate --db ./transfers.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			version, err := s.st.SchemaVersion()
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read schema version", err)
			}
			if rootOpts.Format == "json" {
				return s.out.Success(map[string]any{
					"db":      s.cfg.DBPath,
					"version": version,
					"current": store.CurrentSchemaVersion(),
				})
			}
			return s.out.Success(fmt.Sprintf("%s at schema version %d", s.cfg.DBPath, version))
		},
	}
}
