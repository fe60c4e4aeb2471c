package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/me/solard/pkg/model"
)

type schedulePayload struct {
	Tasks     []model.ScheduleTask      `json:"tasks"`
	Locations map[string]model.Position `json:"locations"`
}

func newScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Show the loaded task list and locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var data schedulePayload
			if err := client.GetInto("/api/v1/schedule", &data); err != nil {
				return fmt.Errorf("get schedule: %w", err)
			}

			fmt.Println("Tasks:")
			for _, t := range data.Tasks {
				when := ""
				if t.At != nil {
					when = model.FormatMinute(*t.At)
				} else if t.Window != nil {
					when = t.Window.String()
				}
				fmt.Printf("  %2d. %-16s %-12s -> %-10s [%s]\n",
					t.Index, t.Name, when, t.Target, strings.Join(t.Actions, ", "))
			}

			fmt.Println("Locations:")
			for name, pos := range data.Locations {
				fmt.Printf("  %-10s (%.1f, %.1f)\n", name, pos.X, pos.Y)
			}
			return nil
		},
	}
}
