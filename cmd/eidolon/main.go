package main

import (
	"os"

	"github.com/hellogreencow/burch/cmd/eidolon/commands"
)

// main is the entry point for the eidolon CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
