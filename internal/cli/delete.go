package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/padron/pkg/types"
)

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <dni>",
		Short: "Delete the record with a national ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.openRegistry(cmd.Context())
			if err != nil {
				return err
			}
			if !reg.Delete(cmd.Context(), args[0]) {
				return userError(fmt.Errorf("dni %s: %w", args[0], types.ErrNotFound))
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]any{"dni": args[0], "deleted": true})
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted", args[0])
			return nil
		},
	}
}
