package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"loom/internal/faults"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show backend daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := ctx.newClient()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			status, err := apiClient.Status(cmd.Context())
			if err != nil {
				if errors.Is(err, faults.ErrUnavailable) {
					fmt.Fprintln(out, "Daemon is not running (start it with `loomd`)")
					return nil
				}
				return fmt.Errorf("query daemon status: %w", err)
			}

			health, err := apiClient.Health(cmd.Context())
			healthValue := "unreachable"
			if err == nil {
				healthValue = health.Status
			}

			uptime := ""
			if !status.StartedAt.IsZero() {
				uptime = time.Since(status.StartedAt).Round(time.Second).String()
			}

			rows := [][]string{
				{"Running", yesNo(status.Running)},
				{"Health", healthValue},
				{"PID", fmt.Sprintf("%d", status.PID)},
				{"Bind", status.Bind},
				{"TLS", yesNo(status.TLS)},
				{"Uptime", uptime},
				{"Lock file", status.LockPath},
				{"History DB", status.HistoryPath},
			}
			fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows))

			if len(status.Dependencies) > 0 {
				depRows := make([][]string, 0, len(status.Dependencies))
				for _, dep := range status.Dependencies {
					detail := dep.Detail
					if dep.Available {
						detail = "ok"
					}
					depRows = append(depRows, []string{dep.Name, dep.Command, yesNo(dep.Available), detail})
				}
				fmt.Fprintln(out, renderTable([]string{"Dependency", "Command", "Available", "Detail"}, depRows))
			}
			return nil
		},
	}
}
