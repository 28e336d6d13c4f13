package main

import (
	"os"

	"github.com/stewardbooks/steward/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
