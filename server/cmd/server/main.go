package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tribeboard/tribeboard/server/internal/config"
)

// logLevel is shared by every command so a config reload can change it.
var logLevel = new(slog.LevelVar)

var flags struct {
	configPath string
}

var rootCmd = &cobra.Command{
	Use:           "tribeboard-server",
	Short:         "Serve and snapshot the tribe leaderboard",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "",
		"path to config file; built-in defaults when empty")
	rootCmd.AddCommand(serveCmd, snapshotCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the --config file and applies its log level.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	logLevel.Set(cfg.Log.SlogLevel())
	return cfg, nil
}
