package cli

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/arnavshah/duty-rotation-go/pkg/export"
	"github.com/arnavshah/duty-rotation-go/pkg/models"
	"github.com/arnavshah/duty-rotation-go/pkg/roster"
	"github.com/arnavshah/duty-rotation-go/pkg/rotation"
	"github.com/spf13/cobra"
)

func newGenerateCmd(now func() time.Time) *cobra.Command {
	var (
		months       int
		strategy     string
		currentMonth bool
		seed         int64
		shiftSize    int
		contextSize  int
		refDate      string
		format       string
		toStdout     bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the duty schedule for the coming months",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFrom(cmd.Context())
			flags := cmd.Flags()
			if flags.Changed("months") {
				cfg.Months = months
			}
			if flags.Changed("strategy") {
				s, err := models.ParseStrategy(strategy)
				if err != nil {
					return err
				}
				cfg.Strategy = s
			}
			if flags.Changed("current-month") {
				cfg.IncludeCurrentMonth = currentMonth
			}
			if flags.Changed("seed") {
				cfg.Seed = seed
			}
			if flags.Changed("shift-size") {
				cfg.ShiftSize = shiftSize
			}
			if flags.Changed("context-size") {
				cfg.ContextSize = contextSize
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ref := now()
			if refDate != "" {
				t, err := time.Parse("2006-01-02", refDate)
				if err != nil {
					return fmt.Errorf("--reference-date must be YYYY-MM-DD: %w", err)
				}
				ref = t
			}

			entries, err := roster.Load(cfg.RosterPath, cfg.Delimiter, cfg.ShiftSize)
			if err != nil {
				return err
			}
			seedNames, err := roster.LoadContext(cfg.ContextPath)
			if err != nil {
				return err
			}

			res, err := rotation.Generate(cfg, entries, seedNames, ref, nil)
			if err != nil {
				log.Printf("schedule generation aborted: %v", err)
				return err
			}
			log.Printf("generated %d shifts from %s to %s (%s, %d members, fairness %.1f%%)",
				len(res.Schedule), res.Horizon.First.Format("2006-01-02"), res.Horizon.Last.Format("2006-01-02"),
				cfg.Strategy, len(res.Members), res.Fairness)

			out := cmd.OutOrStdout()
			switch export.Format(format) {
			case export.JSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res.Response(cfg))
			case export.CSV:
				if toStdout {
					return export.WriteCSV(out, res.Schedule)
				}
				e := export.Exporter{Dir: cfg.OutputDir, Prefix: cfg.OutputPrefix, MonthNames: cfg.MonthNames}
				path, err := e.SaveCSV(res.Schedule)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, path)
				return nil
			}
			return fmt.Errorf("unknown format %q", format)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&months, "months", "m", 4, "Number of months to schedule")
	f.StringVarP(&strategy, "strategy", "s", "1", "1: shuffle the roster every cycle and each shift, 2: keep roster order")
	f.BoolVarP(&currentMonth, "current-month", "c", false, "Start with the current month instead of the next one")
	f.Int64Var(&seed, "seed", 0, "Shuffle seed for a reproducible random schedule")
	f.IntVar(&shiftSize, "shift-size", 4, "Members per shift")
	f.IntVar(&contextSize, "context-size", 8, "Number of recent names that may not be reused")
	f.StringVar(&refDate, "reference-date", "", "Pretend today is this date (YYYY-MM-DD)")
	f.StringVarP(&format, "format", "f", string(export.CSV), "Output format: csv or json")
	f.BoolVar(&toStdout, "stdout", false, "Write CSV to stdout instead of the data directory")

	return cmd
}
