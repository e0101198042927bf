package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/fusionlink/fusionlink/internal/cli"
	"github.com/fusionlink/fusionlink/internal/logging"
)

// setup resolves the shared persistent flags into a config and logger.
func setup(cmd *cobra.Command) (cli.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := cli.LoadConfig(path)
	if err != nil {
		return cfg, nil, err
	}

	levelName, _ := cmd.Flags().GetString("log-level")
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelName)); err != nil {
		level = slog.LevelInfo
	}
	return cfg, logging.New(level), nil
}
