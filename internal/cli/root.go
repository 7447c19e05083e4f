// Package cli implements the padron command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	padronsqlite "github.com/mesh-intelligence/padron/pkg/sqlite"
	"github.com/mesh-intelligence/padron/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	asset     string
	logLevel  string
	jsonMode  bool
}

// app carries the state shared by one command tree.
type app struct {
	flags    rootFlags
	cfg      types.Config
	log      zerolog.Logger
	closeLog func() error

	// open builds the registry; tests may replace it.
	open func(types.Config, zerolog.Logger) (types.Registry, error)
}

func newApp() *app {
	return &app{open: padronsqlite.Open, log: zerolog.Nop()}
}

// close releases the log file opened by setup. It is safe to call twice.
func (a *app) close() error {
	if a.closeLog == nil {
		return nil
	}
	err := a.closeLog()
	a.closeLog = nil
	return err
}

// newRootCmd creates the top-level "padron" command with global flags and
// all subcommands registered.
func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "padron",
		Short: "Search and edit a local personal registry",
		Long: "padron looks up and edits records of a personal registry kept in a\n" +
			"local SQLite file. The file is copied from a bundled dataset on first use.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory holding the writable database")
	root.PersistentFlags().StringVar(&a.flags.asset, "asset", "", "bundled dataset copied on first use")
	root.PersistentFlags().StringVar(&a.flags.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newFindCmd(a))
	root.AddCommand(newGetCmd(a))
	root.AddCommand(newSaveCmd(a))
	root.AddCommand(newDeleteCmd(a))
	root.AddCommand(newCountCmd(a))
	root.AddCommand(newImportCmd(a))
	root.AddCommand(newConfigCmd(a))

	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	return run(newApp(), os.Args[1:], os.Stdout, os.Stderr)
}

// run executes one command tree over a and closes its log file whether or
// not the command succeeded.
func run(a *app, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(a)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)
	err := root.Execute()
	if cerr := a.close(); cerr != nil && err == nil {
		err = sysError(fmt.Errorf("close log: %w", cerr))
	}
	if err != nil {
		fmt.Fprintln(stderr, "padron:", err)
	}
	return exitCode(err)
}

// exitError carries the exit code chosen by a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error {
	return &exitError{code: exitUserError, err: err}
}

func sysError(err error) error {
	return &exitError{code: exitSysError, err: err}
}

// exitCode maps err to an exit code. Storage failures that reach the CLI
// are system errors; anything else unclassified is a usage error.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if errors.Is(err, types.ErrProvisioning) || errors.Is(err, types.ErrConnection) {
		return exitSysError
	}
	return exitUserError
}
