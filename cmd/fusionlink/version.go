package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fusionlink/fusionlink"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of fusionlink",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fusionlink version %s\n", fusionlink.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
