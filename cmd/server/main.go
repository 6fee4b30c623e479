package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// Set by the linker.
var (
	version = "dev"
	commit  = "none"
)

var rootCmd = &cobra.Command{
	Use:   "awesome-arcade",
	Short: "Awesome Arcade Extensions site",
	Long: `Awesome Arcade Extensions is a curated, searchable list of MakeCode Arcade
extensions and tools with live click counts.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, _ []string) {
		if err := cmd.Help(); err != nil {
			slog.Error("Error displaying help", "error", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, buildCmd, copyCmd, searchCmd, versionCmd)
}

// getLogLevel parses LOG_LEVEL. Defaults to info.
func getLogLevel() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	opts := &slog.HandlerOptions{Level: getLogLevel()}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if os.Getenv("LOG_FORMAT") == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
