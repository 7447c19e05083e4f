package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/padron/pkg/types"
)

var errNoCriteria = errors.New("at least one search field is required")

func newFindCmd(a *app) *cobra.Command {
	var fields recordFlags
	cmd := &cobra.Command{
		Use:   "find [field=value...]",
		Short: "Search records by one or more fields",
		Long: `Find returns up to 30 records matching every given field. Matching ignores
case and accents, and each word of a value must appear in order.

Example:
  padron find --lastname perez --locality rosario
  padron find names="juan carlos" province=cordoba`,
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria := types.Criteria(fields.changed(cmd))
			if err := parseCriteria(criteria, args); err != nil {
				return userError(err)
			}
			if criteria.IsEmpty() {
				return userError(errNoCriteria)
			}

			reg, err := a.openRegistry(cmd.Context())
			if err != nil {
				return err
			}
			recs := reg.Find(cmd.Context(), criteria)
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), recs)
			}
			printRecords(cmd.OutOrStdout(), recs)
			return nil
		},
	}
	fields = bindRecordFlags(cmd)
	return cmd
}
