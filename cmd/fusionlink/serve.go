package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fusionlink/fusionlink"
	redisJournal "github.com/fusionlink/fusionlink/pkg/adapters/redis"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reference host with the bridge HTTP server",
	Long: `Starts the in-memory reference host and the loopback bridge server.
The calling thread becomes the host's event dispatch thread; the HTTP
accept loop runs in the background, exactly as inside the real host.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger, err := setup(cmd)
		if err != nil {
			fmt.Printf("Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetInt("port")
		}

		opts := []fusionlink.Option{
			fusionlink.WithAddr(cfg.Host, cfg.Port),
			fusionlink.WithLogger(logger),
		}
		if cfg.Redis.Addr != "" {
			journal := redisJournal.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
			defer journal.Close()
			opts = append(opts, fusionlink.WithJournal(journal))
		}

		b, err := fusionlink.New(opts...)
		if err != nil {
			fmt.Printf("Error initializing fusionlink: %v\n", err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Starting fusionlink bridge on %s:%d\n", cfg.Host, cfg.Port)
		if err := b.Run(ctx); err != nil {
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("fusionlink bridge stopped gracefully")
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 3600, "Port to listen on")
}
