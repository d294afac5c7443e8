package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Ottrlang/otterlang/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the otter version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("otter %s\n", version.String())
	},
}
