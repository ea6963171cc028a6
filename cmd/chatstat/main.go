package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/chatstat/internal/config"
)

var version = "dev"

var verbose bool

func main() {
	rootCmd := &cobra.Command{
		Use:           "chatstat",
		Short:         "chatstat - statistics and search for WhatsApp chat exports",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log debug output to stderr")

	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(browseCmd())
	rootCmd.AddCommand(indexCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(previewCmd())
	rootCmd.AddCommand(openCmd())
	rootCmd.AddCommand(doctorCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "chatstat:", err)
		os.Exit(1)
	}
}

// loadConfig loads the configuration and sets up logging from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = log.DebugLevel
	}
	log.SetLevel(level)
	return cfg, nil
}
