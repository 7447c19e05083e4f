package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/padron/pkg/types"
)

func newSaveCmd(a *app) *cobra.Command {
	var (
		fields recordFlags
		merge  bool
	)
	cmd := &cobra.Command{
		Use:   "save --dni <dni> [field flags]",
		Short: "Insert or update the record with a national ID",
		Long: `Save stores the record identified by --dni. An existing record is replaced
as a whole; with --merge only the given fields change.

Example:
  padron save --dni 20123456 --lastname Pérez --names "Juan Carlos"
  padron save --dni 20123456 --merge --work Docente`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values := fields.changed(cmd)
			dni := strings.TrimSpace(values[types.FieldNationalID])
			if dni == "" {
				return userError(types.ErrInvalidRecord)
			}

			reg, err := a.openRegistry(cmd.Context())
			if err != nil {
				return err
			}

			var rec types.Record
			if merge {
				existing, ok, err := reg.GetOne(cmd.Context(), dni)
				if err != nil {
					return sysError(err)
				}
				// GetOne may return a partial match; merge only into the same dni.
				if ok && existing.NationalID == dni {
					rec = existing
				}
			}
			applyColumns(&rec, values)
			rec.ID = 0

			if !reg.Save(cmd.Context(), rec) {
				return sysError(fmt.Errorf("dni %s: %w", dni, types.ErrWrite))
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]any{"dni": dni, "saved": true})
			}
			fmt.Fprintln(cmd.OutOrStdout(), "saved", dni)
			return nil
		},
	}
	fields = bindRecordFlags(cmd)
	cmd.Flags().BoolVar(&merge, "merge", false, "keep stored values for fields not given")
	return cmd
}
