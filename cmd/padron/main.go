// Command padron searches and edits a local personal registry.
package main

import (
	"os"

	"github.com/mesh-intelligence/padron/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
