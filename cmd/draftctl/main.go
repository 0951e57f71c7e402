package main

import (
	"os"

	"github.com/okian/draftsim/cmd/draftctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
