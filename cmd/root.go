// Package cmd implements the command-line interface for the event sync
// pipeline. It provides the root command and subcommands for running,
// scheduling and inspecting sync runs.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eventscout/eventsync/cmd/run"
	"github.com/eventscout/eventsync/cmd/schedule"
	"github.com/eventscout/eventsync/cmd/stats"
	"github.com/eventscout/eventsync/cmd/syncnow"
	"github.com/eventscout/eventsync/internal/config"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// debug enables debug logging for all commands.
	debug bool

	// rootCmd represents the root command for the eventsync CLI.
	rootCmd = &cobra.Command{
		Use:   "eventsync",
		Short: "Sync scraped event listings into the event store",
		Long: `eventsync validates, tags, deduplicates and stores event listings
collected by the scraper processes. It is designed to run as a periodic
batch job after each scrape.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// Load .env early so environment variables are available to viper.
	_ = godotenv.Load()

	// Parse flags early so --config and --debug apply before viper reads.
	_ = rootCmd.ParseFlags(os.Args[1:])

	if err := initConfig(); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is ./config.yaml)",
	)
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("eventsync version %s\n", "1.0.0")
		},
	})

	rootCmd.AddCommand(run.Command())
	rootCmd.AddCommand(syncnow.Command())
	rootCmd.AddCommand(schedule.Command())
	rootCmd.AddCommand(stats.Command())
}

// initConfig reads the config file and environment variables into viper.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	config.SetDefaults()
	config.BindEnv()

	if err := viper.ReadInConfig(); err != nil {
		// The config file is optional; env vars alone are a valid setup.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return fmt.Errorf("read config file: %w", err)
		}
	}

	if debug {
		viper.Set("log.level", "debug")
		viper.Set("log.development", true)
	}

	return nil
}
