// Command catalogctl manages a recipe catalog from the command line.
//
// Settings come from CATALOG_* environment variables, optionally loaded
// from a dotenv file given with --env.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
