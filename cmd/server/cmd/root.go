package cmd

import (
	"fmt"
	"os"

	"github.com/sbms-academy/server/internal/config"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	logFormat  string

	rootCmd = newRootCmd()
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "SBMS academy server - registrations, events and leads backend",
		Long: `SBMS academy server backs the academy website and the staff dashboard.

It serves:
- Event and session listings for the public site
- Profiles, photo uploads and event registrations for signed-in visitors
- Lead tracking, QR passes and exports for staff
- An admin area behind a shared password`,
		SilenceUsage: true,
		// Run the serve command by default if no subcommand is specified
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveCmd.RunE(cmd, args)
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (environment variables take precedence)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error) (default: info)")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (json, console) (default: json)")

	cmd.AddCommand(serveCmd)
	cmd.AddCommand(migrateCmd)
	cmd.AddCommand(exportCmd)
	cmd.AddCommand(versionCmd)
	cmd.AddCommand(healthcheckCmd)
	cmd.AddCommand(tokenCmd)
	return cmd
}

// Execute runs the root command. It is called once by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment (and --config when given) and applies
// the logging flags on top.
func loadConfig() (config.Config, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	return cfg, nil
}
