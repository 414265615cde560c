// Package cli содержит команды iotctl.
package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"iot-maintenance/internal/config"
	"iot-maintenance/internal/logging"
	"iot-maintenance/internal/models"
	"iot-maintenance/internal/wire"
)

// NewRootCmd собирает дерево команд
func NewRootCmd() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "iotctl",
		Short: "Local predictive maintenance for simulated IoT machines",
		Long: `iotctl stores sensor readings, trains a failure classifier on them
and scores new readings, working directly on the local database and model files.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a YAML config file")

	// сервис создается лениво внутри каждой команды
	withApp := func(cmd *cobra.Command, fn func(ctx context.Context, app *wire.App) error) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		logging.Init(cfg.LogFormat, logging.ParseLevel(cfg.LogLevel))

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		app, err := wire.Build(ctx, cfg)
		if err != nil {
			return err
		}
		defer app.Close()
		return fn(ctx, app)
	}

	rootCmd.AddCommand(addCmd(withApp))
	rootCmd.AddCommand(simulateCmd(withApp))
	rootCmd.AddCommand(trainCmd(withApp))
	rootCmd.AddCommand(predictCmd(withApp))
	rootCmd.AddCommand(statsCmd(withApp))

	return rootCmd
}

type appRunner func(cmd *cobra.Command, fn func(ctx context.Context, app *wire.App) error) error

func statusColor(status models.Status) string {
	if status == models.StatusFail {
		return color.New(color.FgRed, color.Bold).Sprint(status)
	}
	return color.New(color.FgGreen).Sprint(status)
}

func success(format string, args ...interface{}) string {
	return color.New(color.FgGreen).Sprint("✓ ") + fmt.Sprintf(format, args...)
}
