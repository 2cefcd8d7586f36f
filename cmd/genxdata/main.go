// Command genxdata generates synthetic tabular datasets from declarative
// configs.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/genxdata/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// Commands print their own errors; only surface ones they could not.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
