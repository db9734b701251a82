// Package main contains the objdbtool CLI, a small diagnostic front end for
// the objectdb library. It uses cobra for command wiring, the same as the
// library's teacher repo's own CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "objdbtool",
		Short: "Diagnostic tool for the objectdb library",
	}

	rootCmd.AddCommand(jsckCmd())
	rootCmd.AddCommand(demoCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
