package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/me/solard/pkg/model"
)

func limitPath(path string, limit int) string {
	return fmt.Sprintf("%s?limit=%d", path, limit)
}

func newReadingsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "readings {power|battery}",
		Short: "Show recent power or battery readings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "power":
				return listPowerReadings(limit)
			case "battery":
				return listBatterySamples(limit)
			default:
				return fmt.Errorf("unknown reading kind %q (want power or battery)", args[0])
			}
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum rows to show")
	return cmd
}

func listPowerReadings(limit int) error {
	var readings []model.PowerReading
	if err := client.GetInto(limitPath("/api/v1/readings/power", limit), &readings); err != nil {
		return fmt.Errorf("list power readings: %w", err)
	}
	if len(readings) == 0 {
		fmt.Println("No power readings")
		return nil
	}
	fmt.Printf("%-10s %-10s %8s %8s %8s\n", "TIME", "RUNNER", "VOLTS", "AMPS", "WATTS")
	for _, r := range readings {
		fmt.Printf("%-10s %-10s %8.2f %8.2f %8.2f\n",
			r.TakenAt.Local().Format("15:04:05"), r.RunnerKey, r.Voltage, r.Current, r.Power)
	}
	return nil
}

func listBatterySamples(limit int) error {
	var samples []model.BatterySample
	if err := client.GetInto(limitPath("/api/v1/readings/battery", limit), &samples); err != nil {
		return fmt.Errorf("list battery samples: %w", err)
	}
	if len(samples) == 0 {
		fmt.Println("No battery samples")
		return nil
	}
	fmt.Printf("%-10s %-10s %7s %7s %-8s\n", "TIME", "RUNNER", "PCT", "VOLTS", "CHARGING")
	for _, s := range samples {
		fmt.Printf("%-10s %-10s %6.1f%% %7.2f %-8v\n",
			s.TakenAt.Local().Format("15:04:05"), s.RunnerKey, s.Percentage, s.Voltage, s.Charging)
	}
	return nil
}

func newActionsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "actions",
		Short: "Show recent schedule decisions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var actions []model.ActionRecord
			if err := client.GetInto(limitPath("/api/v1/actions", limit), &actions); err != nil {
				return fmt.Errorf("list actions: %w", err)
			}
			if len(actions) == 0 {
				fmt.Println("No recorded actions")
				return nil
			}
			for _, a := range actions {
				line := fmt.Sprintf("%s  %s [%s]",
					a.TickedAt.Local().Format("15:04:05"), a.Target, strings.Join(a.Actions, ", "))
				if a.Override {
					line += " OVERRIDE: " + a.Reason
				} else if a.TaskName != "" {
					line += " (" + a.TaskName + ")"
				}
				fmt.Println(line)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum rows to show")
	return cmd
}

func newNotificationsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Show recent alerts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var notes []model.Notification
			if err := client.GetInto(limitPath("/api/v1/notifications", limit), &notes); err != nil {
				return fmt.Errorf("list notifications: %w", err)
			}
			if len(notes) == 0 {
				fmt.Println("No notifications")
				return nil
			}
			for _, n := range notes {
				fmt.Printf("%s  [%s] %s\n",
					n.RaisedAt.Local().Format("15:04:05"), n.RunnerKey, n.Message)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum rows to show")
	return cmd
}
