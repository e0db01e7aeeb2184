package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	address  string
	apiToken string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "casevault",
	Short: "Command line client for the casevault server",
	Long: `casevault is a command line client for the casevault case management server.
It can inspect the server configuration, browse folders, files and workflows,
and follow task execution status.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, _ := cmd.Flags().GetString("log-level")
		InitLogger(level)
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&address, "address", "a", "http://localhost:8710", "Address of the casevault server")
	rootCmd.PersistentFlags().StringVarP(&apiToken, "token", "t", os.Getenv("CASEVAULT_TOKEN"), "API key token (defaults to CASEVAULT_TOKEN)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
}

var logLevel slog.Level

// InitLogger initializes the global logger with the specified log level
func InitLogger(level string) {
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		fmt.Printf("Invalid log level: %s. Using 'info' as default.\n", level)
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
}
