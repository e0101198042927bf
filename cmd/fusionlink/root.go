package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fusionlink",
	Short: "fusionlink bridges remote agents into an event-driven CAD host",
	Long: `fusionlink runs a loopback HTTP bridge inside a CAD host process and
exposes named actions (script execution, screenshots, parameters) to
remote agents, executing each call as one undoable host transaction.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "fusionlink.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
}
