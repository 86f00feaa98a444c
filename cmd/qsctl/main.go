package main

import (
	"fmt"
	"os"

	"quantumshield/cmd/qsctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
