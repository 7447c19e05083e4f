package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/padron/pkg/types"
)

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <dni>",
		Short: "Show the record with a national ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.openRegistry(cmd.Context())
			if err != nil {
				return err
			}
			rec, ok, err := reg.GetOne(cmd.Context(), args[0])
			if err != nil {
				return sysError(err)
			}
			if !ok {
				return userError(fmt.Errorf("dni %s: %w", args[0], types.ErrNotFound))
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), rec)
			}
			printRecord(cmd.OutOrStdout(), rec)
			return nil
		},
	}
}
