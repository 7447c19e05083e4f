package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.jsonl>",
		Short: "Upsert records from a JSONL file",
		Long: `Import reads one JSON object per line and saves each by its dni. The whole
file is applied in one transaction: if any write fails nothing is kept.
Malformed lines and records without a dni are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.openRegistry(cmd.Context())
			if err != nil {
				return err
			}
			res, err := reg.Import(cmd.Context(), args[0])
			if err != nil {
				return sysError(err)
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "read %d, inserted %d, updated %d, skipped %d\n",
				res.Read, res.Inserted, res.Updated, res.Skipped)
			return nil
		},
	}
}
