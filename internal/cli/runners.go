package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/solard/pkg/model"
)

func newRunnersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "runners [key]",
		Short: "List runners or show one runner in detail",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return showRunner(args[0])
			}
			return listRunners()
		},
	}
}

func listRunners() error {
	var runners []model.RunnerStatus
	if err := client.GetInto("/api/v1/runners", &runners); err != nil {
		return fmt.Errorf("list runners: %w", err)
	}

	if len(runners) == 0 {
		fmt.Println("No runners registered")
		return nil
	}
	fmt.Printf("%-16s %-8s %-10s %-8s %s\n", "KEY", "TYPE", "STATE", "HEALTHY", "ERRORS")
	for _, r := range runners {
		fmt.Printf("%-16s %-8s %-10s %-8v %d\n", r.Key, r.Type, r.State, r.Healthy, r.ErrorCount)
	}
	return nil
}

func showRunner(key string) error {
	var r model.RunnerStatus
	if err := client.GetInto("/api/v1/runners/"+key, &r); err != nil {
		return fmt.Errorf("get runner: %w", err)
	}

	fmt.Printf("Runner:  %s (%s)\n", r.Key, r.Label)
	fmt.Printf("Type:    %s\n", r.Type)
	fmt.Printf("State:   %s\n", r.State)
	fmt.Printf("Healthy: %v\n", r.Healthy)
	fmt.Printf("Errors:  %d\n", r.ErrorCount)
	if r.LastError != "" {
		fmt.Printf("Last:    %s\n", r.LastError)
	}
	if r.LastCycle != nil {
		fmt.Printf("Cycle:   %s\n", r.LastCycle.Format("15:04:05"))
	}
	fmt.Printf("Uptime:  %.0fs\n", r.Uptime)
	if r.ForceStopped {
		fmt.Println("FORCE-STOPPED at last shutdown")
	}
	return nil
}
