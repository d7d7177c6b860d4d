// Package cli implements the hakobu command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rinwao/hakobu/internal/app"
	"github.com/rinwao/hakobu/internal/logging"
)

var (
	cfgFile string

	fileCfg *FileConfig
	appCfg  *app.Config
	logger  logging.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hakobu",
	Short: "hakobu - external asset lifecycle manager",
	Long: `hakobu submits audio and image assets to a remote creative platform,
tracks their moderation status from the platform's unreliable external
signals, and withdraws them when asked.`,
	PersistentPreRunE: initializeApp,
	SilenceUsage:      true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: XDG config dir)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(withdrawCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
}

func initializeApp(cmd *cobra.Command, args []string) error {
	// Config bootstrap must not require a config file.
	if cmd.Name() == "init" && cmd.Parent() != nil && cmd.Parent().Name() == "config" {
		return nil
	}

	path := cfgFile
	if path == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		return err
	}
	fileCfg = fc

	cfg, err := fc.AppConfig()
	if err != nil {
		return err
	}
	appCfg = cfg

	level := zerolog.InfoLevel
	if fc.LogLevel != "" {
		l, err := zerolog.ParseLevel(fc.LogLevel)
		if err != nil {
			return fmt.Errorf("log_level: %w", err)
		}
		level = l
	}
	logger = logging.NewZerologLogger(os.Stderr, "hakobu", level)

	return nil
}

// newOrchestrator wires the full component graph from the loaded config.
func newOrchestrator() (*app.Orchestrator, error) {
	if appCfg.PlatformCfg.BaseURL == "" {
		return nil, fmt.Errorf("base_url is not configured; run 'hakobu config init' and edit the file")
	}
	return app.NewOrchestrator(appCfg, logger)
}
