package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"iot-maintenance/internal/analytics"
	"iot-maintenance/internal/models"
	"iot-maintenance/internal/service"
	"iot-maintenance/internal/wire"
)

func addCmd(run appRunner) *cobra.Command {
	var req models.AddDataRequest

	cmd := &cobra.Command{
		Use:   "add [machine-id]",
		Short: "Store one sensor reading with an explicit status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.MachineID = args[0]
			return run(cmd, func(ctx context.Context, app *wire.App) error {
				resp, err := app.Service.AddData(ctx, req)
				if err != nil {
					return fmt.Errorf("failed to add data: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), success("%s (id %d)", resp.Message, resp.ID))
				return nil
			})
		},
	}

	cmd.Flags().Float64Var(&req.Temperature, "temperature", 0, "temperature reading")
	cmd.Flags().Float64Var(&req.Vibration, "vibration", 0, "vibration reading")
	cmd.Flags().Float64Var(&req.Pressure, "pressure", 0, "pressure reading")
	cmd.Flags().StringVar(&req.Status, "status", "", "OK or FAIL")
	for _, name := range []string{"temperature", "vibration", "pressure", "status"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func simulateCmd(run appRunner) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "simulate [machine-id]",
		Short: "Generate labelled synthetic readings for a machine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, app *wire.App) error {
				n := count
				if !cmd.Flags().Changed("count") {
					n = app.Service.DefaultCount()
				}
				resp, err := app.Service.SimulateData(ctx, args[0], n)
				if err != nil {
					return fmt.Errorf("failed to simulate data: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), success("%s", resp.Message))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 10, "number of readings to generate")
	return cmd
}

func trainCmd(run appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Fit the failure classifier on every stored reading",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, app *wire.App) error {
				resp, err := app.Service.TrainModel(ctx)
				if errors.Is(err, analytics.ErrDegenerateTrainingSet) {
					return fmt.Errorf("training rejected: %w (store both OK and FAIL readings first)", err)
				}
				if err != nil {
					return fmt.Errorf("failed to train model: %w", err)
				}

				out := cmd.OutOrStdout()
				if resp.Message == service.MsgNoData {
					fmt.Fprintln(out, color.New(color.FgYellow).Sprint("! ")+resp.Message)
					return nil
				}
				fmt.Fprintln(out, success("%s on %d readings", resp.Message, resp.Samples))
				return nil
			})
		},
	}
}

func predictCmd(run appRunner) *cobra.Command {
	var req models.PredictRequest

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Score one reading with the current model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, app *wire.App) error {
				out := cmd.OutOrStdout()

				resp, err := app.Service.Predict(ctx, req)
				if errors.Is(err, analytics.ErrNotTrained) {
					fmt.Fprintln(out, color.New(color.FgYellow).Sprint("! ")+service.MsgNotTrained)
					return nil
				}
				if err != nil {
					return fmt.Errorf("failed to predict: %w", err)
				}

				fmt.Fprintf(out, "Prediction: %s (p(FAIL)=%.3f)\n", statusColor(resp.Prediction), resp.Probability)
				return nil
			})
		},
	}

	cmd.Flags().Float64Var(&req.Temperature, "temperature", 0, "temperature reading")
	cmd.Flags().Float64Var(&req.Vibration, "vibration", 0, "vibration reading")
	cmd.Flags().Float64Var(&req.Pressure, "pressure", 0, "pressure reading")
	for _, name := range []string{"temperature", "vibration", "pressure"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func statsCmd(run appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show stored record count and current model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, app *wire.App) error {
				stats, err := app.Service.GetStats(ctx)
				if err != nil {
					return fmt.Errorf("failed to get stats: %w", err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Records: %d\n", stats.Records)
				if !stats.ModelTrained {
					fmt.Fprintf(out, "Model:   %s\n", color.New(color.FgYellow).Sprint("not trained"))
					return nil
				}
				fmt.Fprintf(out, "Model:   trained on %d readings", stats.Samples)
				if stats.TrainedAt != nil {
					fmt.Fprintf(out, " at %s", stats.TrainedAt.Format("2006-01-02 15:04:05"))
				}
				fmt.Fprintln(out)
				fmt.Fprintf(out, "  weights: temperature=%.4f vibration=%.4f pressure=%.4f\n",
					stats.Weights[0], stats.Weights[1], stats.Weights[2])
				fmt.Fprintf(out, "  bias:    %.4f\n", stats.Bias)
				return nil
			})
		},
	}
}
