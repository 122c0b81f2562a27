package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mycobot/internal/app"
	"mycobot/internal/config"
)

var (
	// Global flags
	verbose bool
	envFile string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mycobot",
	Short: "MycoBot - mushroom farming assistant",
	Long: `MycoBot answers mushroom farming questions with a remote language model,
falls back to an offline FAQ when the model is unreachable, and keeps
farm, environment and journal logs as CSV files.

Configuration comes from the environment (optionally a .env file).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envFile); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %s file not found: %v\n", envFile, err)
		}
		var err error
		cfg, err = config.New()
		if err != nil {
			return err
		}
		logger, err = app.NewLogger(cfg.LogLevel, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Dotenv file loaded before reading the environment")

	panelCmd.Flags().StringArrayVarP(&panelFields, "field", "f", nil, "Field value as key=value (repeatable)")
	panelCmd.Flags().StringVar(&panelAudio, "audio", "", "Audio file to transcribe as the question (chat panel)")
	panelCmd.Flags().StringVar(&panelPhoto, "photo", "", "Photo to attach (journal panel)")
	panelCmd.Flags().StringVarP(&panelOut, "out", "o", "", "Write table output as CSV to this file")
	digestCmd.Flags().StringVar(&digestDate, "date", "", "Day to summarise as YYYY-MM-DD (default: today)")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(panelsCmd)
	rootCmd.AddCommand(panelCmd)
	rootCmd.AddCommand(transcribeCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(digestCmd)
	rootCmd.AddCommand(botCmd)
}

// newApp wires the services from the parsed configuration.
func newApp() (*app.App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return app.New(cfg, logger)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
