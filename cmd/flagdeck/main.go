// flagdeck shows and edits the experimental feature flags and preferences of
// a local config file.
package main

import (
	"os"

	"github.com/wilbur182/flagdeck/cmd/flagdeck/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
