package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Copy the bundled dataset into the data directory",
		Long:  "Create the configuration and data directories and copy the bundled dataset\nunless the writable database already exists.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.openRegistry(cmd.Context())
			if err != nil {
				return err
			}
			n, err := reg.Count(cmd.Context())
			if err != nil {
				return sysError(err)
			}

			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"database": a.cfg.DBPath(),
					"records":  n,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), "padron initialized")
			fmt.Fprintln(cmd.OutOrStdout(), "  database:", a.cfg.DBPath())
			fmt.Fprintln(cmd.OutOrStdout(), "  records: ", n)
			return nil
		},
	}
}
