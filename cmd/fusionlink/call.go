package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fusionlink/fusionlink/pkg/client"
)

// callCmd performs one action invocation and prints the envelope.
var callCmd = &cobra.Command{
	Use:   "call <action>",
	Short: "Invoke a single bridge action and print the response envelope",
	Long: `Performs one POST against the running bridge server and prints the
response envelope as JSON. Parameters are given as a JSON object:

  fusionlink call execute_code --params '{"code": "print(1+1)"}'`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger, err := setup(cmd)
		if err != nil {
			fmt.Printf("Error loading configuration: %v\n", err)
			os.Exit(1)
		}

		var params map[string]any
		if raw, _ := cmd.Flags().GetString("params"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &params); err != nil {
				fmt.Printf("Invalid --params JSON: %v\n", err)
				os.Exit(1)
			}
		}

		c := client.New(
			client.WithAddr(cfg.Host, cfg.Port),
			client.WithTimeout(cfg.Timeout.Std()),
			client.WithLogger(logger),
		)

		env := c.CallAction(context.Background(), args[0], params)
		out, err := json.MarshalIndent(env, "", "  ")
		if err != nil {
			fmt.Printf("Cannot render envelope: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(out))

		if !env.Success {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(callCmd)
	callCmd.Flags().String("params", "", "JSON object with the action parameters")
}
