package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/sms-extractor/internal/config"
	"github.com/example/sms-extractor/internal/logger"
	"github.com/example/sms-extractor/pkg/smsparser"
)

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sms-extractor",
	Short: "Extract and categorize transactions from bank SMS messages",
	Long: `SMS Extractor is a tool for processing bank SMS messages, extracting
transaction data, and categorizing transactions based on configurable rules.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "SMS Extractor v1.0.0")
		fmt.Fprintln(cmd.OutOrStdout(), "Use --help for available commands")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a TOML config file")
	rootCmd.AddCommand(parseCmd, importCmd)
}

// app bundles what every subcommand needs.
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	parser *smsparser.Parser
}

// newApp loads the config named by --config. Without one the parser runs
// on its built-in tables.
func newApp() (*app, error) {
	cfg := &config.Config{DefaultCategory: smsparser.DefaultCategory, Environment: "development"}
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	log := logger.New(cfg.Environment)
	opts := cfg.ParserOptions()
	opts.Logger = log
	return &app{
		cfg:    cfg,
		log:    log,
		parser: smsparser.New(cfg.Rules(), opts),
	}, nil
}
