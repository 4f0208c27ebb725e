package main

import (
	"fmt"
	"os"

	"tickerchat/cmd"
)

const Version = "v0.1.0"

func main() {
	rootCmd := cmd.NewRootCommand()
	rootCmd.Version = Version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
