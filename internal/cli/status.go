package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/solard/pkg/model"
)

type statusPayload struct {
	System  model.SystemStatus   `json:"system"`
	Battery model.SafetyEnvelope `json:"battery"`
	Action  model.SelectedAction `json:"action"`
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show system status: runners, battery envelope, current action",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var data statusPayload
			if err := client.GetInto("/api/v1/status", &data); err != nil {
				return fmt.Errorf("get status: %w", err)
			}

			sys := data.System
			fmt.Printf("Runners: %d total, %d running, %d errored, %d stopped\n",
				sys.Total, sys.Running, sys.Errored, sys.Stopped)
			if sys.AllHealthy {
				fmt.Println("Health:  all healthy")
			} else {
				fmt.Printf("Health:  DEGRADED (%d/%d healthy)\n", sys.Healthy, sys.Total)
			}

			env := data.Battery
			fmt.Printf("Battery: %.1f%%", env.Percentage)
			if env.Stale {
				fmt.Print(" (STALE)")
			}
			if env.LowBattery {
				fmt.Print(" LOW")
			}
			fmt.Printf(", allowed distance %.1f\n", env.AllowedDistance)

			printAction(data.Action)
			return nil
		},
	}
}

func printAction(a model.SelectedAction) {
	switch {
	case a.Idle:
		fmt.Println("Action:  idle")
	case a.Override:
		fmt.Printf("Action:  %s %v [OVERRIDE: %s]\n", a.Target, a.Actions, a.Reason)
	default:
		fmt.Printf("Action:  %s %v", a.Target, a.Actions)
		if a.TaskName != "" {
			fmt.Printf(" (task %s)", a.TaskName)
		}
		fmt.Println()
	}
}

func newActionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "action",
		Short: "Show the current schedule decision",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var action model.SelectedAction
			if err := client.GetInto("/api/v1/action", &action); err != nil {
				return fmt.Errorf("get action: %w", err)
			}
			printAction(action)
			return nil
		},
	}
}

type batteryPayload struct {
	Latest   *model.BatteryState  `json:"latest"`
	Envelope model.SafetyEnvelope `json:"envelope"`
}

func newBatteryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "battery",
		Short: "Show the latest battery sample and safety envelope",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var data batteryPayload
			if err := client.GetInto("/api/v1/battery", &data); err != nil {
				return fmt.Errorf("get battery: %w", err)
			}

			if data.Latest == nil {
				fmt.Println("No battery sample yet")
			} else {
				b := data.Latest
				fmt.Printf("Battery:  %.1f%% (%.2fV)\n", b.Percentage, b.Voltage)
				fmt.Printf("Charging: %v, input power: %v\n", b.Charging, b.InputPower)
				fmt.Printf("Sampled:  %s\n", b.SampledAt.Format("15:04:05"))
			}

			env := data.Envelope
			fmt.Printf("Envelope: low=%v stale=%v allowed_distance=%.1f\n",
				env.LowBattery, env.Stale, env.AllowedDistance)
			return nil
		},
	}
}
