// Package main implements the poisoncheck CLI tool.
//
// poisoncheck statically checks Go source trees for poison guard
// discipline: every acquired guard must be released on all exit paths,
// and sections that are expected to complete must commit. The type
// system cannot enforce either, so the library ships this checker
// alongside the runtime packages.
//
// Usage:
//
//	poisoncheck check ./...        # check a source tree
//	poisoncheck check file.go      # check individual files
//	poisoncheck check --strict .   # treat warnings as errors
//
// Exit status: 0 when clean, 1 when findings were reported, 2 on
// usage or parse failures.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kolkov/poisoning/poison"
)

var rootCmd = &cobra.Command{
	Use:   "poisoncheck",
	Short: "Static checker for poison guard discipline",
	Long: `poisoncheck finds poison guards that are never released, released
without a commit on any path, or discarded at the acquisition site.

It understands the github.com/kolkov/poisoning/poison and /lock
packages and skips modules that do not depend on them.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		info := poison.GetInfo()
		fmt.Printf("poisoncheck %s (%s protocol)\n", info.Version, info.Protocol)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(2)
	}
}
