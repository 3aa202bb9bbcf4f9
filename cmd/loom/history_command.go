package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"loom/internal/faults"
	"loom/internal/history"
	"loom/internal/models"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var kindFlag string
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent workspace runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			var kind models.RunKind
			if kindFlag != "" {
				parsed, ok := models.ParseRunKind(kindFlag)
				if !ok {
					return fmt.Errorf("unknown run kind %q (expected one of %v)", kindFlag, (models.RunKind("")).EnumValues())
				}
				kind = parsed
			}

			records, err := fetchHistory(cmd, ctx, kind, limitFlag)
			if err != nil {
				return err
			}

			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recorded runs")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, record := range records {
				elapsed := ""
				if record.FinishedAt != nil {
					elapsed = record.FinishedAt.Sub(record.StartedAt).Round(time.Millisecond).String()
				}
				rows = append(rows, []string{
					strconv.FormatInt(record.ID, 10),
					string(record.Kind),
					string(record.Status),
					record.StartedAt.Local().Format("2006-01-02 15:04:05"),
					elapsed,
					record.Detail,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Kind", "Status", "Started", "Elapsed", "Detail"}, rows, 0, 4))
			return nil
		},
	}

	cmd.Flags().StringVar(&kindFlag, "kind", "", "Filter by run kind (typegen, check, dev, backend)")
	cmd.Flags().IntVarP(&limitFlag, "limit", "n", 20, "Maximum number of runs to show")
	return cmd
}

// fetchHistory prefers the daemon API and falls back to reading the
// history database directly when no daemon is running.
func fetchHistory(cmd *cobra.Command, ctx *commandContext, kind models.RunKind, limit int) ([]models.RunRecord, error) {
	apiClient, err := ctx.newClient()
	if err != nil {
		return nil, err
	}
	records, err := apiClient.History(cmd.Context(), kind, limit)
	if err == nil {
		return records, nil
	}
	if !errors.Is(err, faults.ErrUnavailable) {
		return nil, fmt.Errorf("query history: %w", err)
	}

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := history.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()
	return store.List(cmd.Context(), kind, limit)
}
