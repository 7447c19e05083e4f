package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/padron/internal/sqlite"
	"github.com/mesh-intelligence/padron/pkg/types"
)

// openRegistry builds the registry and provisions the database. A missing
// asset is a usage error; a failed copy is a system error.
func (a *app) openRegistry(ctx context.Context) (types.Registry, error) {
	reg, err := a.open(a.cfg, a.log)
	if err != nil {
		if errors.Is(err, types.ErrAssetPathEmpty) {
			return nil, userError(fmt.Errorf("no bundled dataset configured: use --asset, asset_path in config.yaml or PADRON_ASSET_PATH"))
		}
		return nil, userError(err)
	}
	if _, err := reg.Provision(ctx); err != nil {
		return nil, sysError(err)
	}
	return reg, nil
}

// recordFlag binds one record column to a command-line flag.
type recordFlag struct {
	name   string
	column string
	usage  string
}

var recordFlagSet = []recordFlag{
	{"dni", types.FieldNationalID, "national ID"},
	{"lastname", types.FieldLastName, "last name"},
	{"names", types.FieldFirstName, "given names"},
	{"clase", types.FieldClass, "class (birth year cohort)"},
	{"address", types.FieldAddress, "address"},
	{"alternate-address", types.FieldAlternateAddress, "alternate address"},
	{"locality", types.FieldLocality, "locality"},
	{"province", types.FieldProvince, "province"},
	{"work", types.FieldOccupation, "occupation"},
}

// recordFlags holds the flag values registered by bindRecordFlags.
type recordFlags map[string]*string

func bindRecordFlags(cmd *cobra.Command) recordFlags {
	values := make(recordFlags, len(recordFlagSet))
	for _, f := range recordFlagSet {
		values[f.name] = cmd.Flags().String(f.name, "", f.usage)
	}
	return values
}

// changed returns column -> value for every flag set on the command line.
func (rf recordFlags) changed(cmd *cobra.Command) map[string]string {
	out := make(map[string]string)
	for _, f := range recordFlagSet {
		if cmd.Flags().Changed(f.name) {
			out[f.column] = *rf[f.name]
		}
	}
	return out
}

// parseCriteria merges key=value arguments into criteria. Keys must name a
// record field.
func parseCriteria(criteria types.Criteria, args []string) error {
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("invalid filter %q (expected key=value)", arg)
		}
		col, ok := sqlite.ResolveField(key)
		if !ok {
			return fmt.Errorf("%w: %q", types.ErrInvalidCriteria, key)
		}
		criteria[col] = value
	}
	return nil
}

// applyColumns sets the record fields named by values.
func applyColumns(rec *types.Record, values map[string]string) {
	for col, v := range values {
		switch col {
		case types.FieldNationalID:
			rec.NationalID = v
		case types.FieldLastName:
			rec.LastName = v
		case types.FieldFirstName:
			rec.FirstName = v
		case types.FieldClass:
			rec.Class = v
		case types.FieldAddress:
			rec.Address = v
		case types.FieldAlternateAddress:
			rec.AlternateAddress = v
		case types.FieldLocality:
			rec.Locality = v
		case types.FieldProvince:
			rec.Province = v
		case types.FieldOccupation:
			rec.Occupation = v
		}
	}
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError(fmt.Errorf("marshal output: %w", err))
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// printRecords writes recs as an aligned table.
func printRecords(w io.Writer, recs []types.Record) {
	if len(recs) == 0 {
		fmt.Fprintln(w, "no records found")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DNI\tLASTNAME\tNAMES\tCLASE\tLOCALITY\tPROVINCE\tWORK")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.NationalID, r.LastName, r.FirstName, r.Class, r.Locality, r.Province, r.DisplayOccupation())
	}
	tw.Flush()
}

// printRecord writes one record as labelled lines.
func printRecord(w io.Writer, r types.Record) {
	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)
	fmt.Fprintf(tw, "dni:\t%s\n", r.NationalID)
	fmt.Fprintf(tw, "lastname:\t%s\n", r.LastName)
	fmt.Fprintf(tw, "names:\t%s\n", r.FirstName)
	fmt.Fprintf(tw, "clase:\t%s\n", r.Class)
	fmt.Fprintf(tw, "address:\t%s\n", r.Address)
	fmt.Fprintf(tw, "alternate_address:\t%s\n", r.AlternateAddress)
	fmt.Fprintf(tw, "locality:\t%s\n", r.Locality)
	fmt.Fprintf(tw, "province:\t%s\n", r.Province)
	fmt.Fprintf(tw, "work:\t%s\n", r.DisplayOccupation())
	tw.Flush()
}
