package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of paper-index",
	// Skip config loading so version works outside a site checkout.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("paper-index %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
