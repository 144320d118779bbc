package cli

import (
	"fmt"

	"github.com/arnavshah/duty-rotation-go/pkg/roster"
	"github.com/arnavshah/duty-rotation-go/pkg/scheduler"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the roster file without generating a schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFrom(cmd.Context())

			entries, err := roster.Load(cfg.RosterPath, cfg.Delimiter, cfg.ShiftSize)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return &scheduler.EmptyRosterError{Source: cfg.RosterPath}
			}

			members, groups := 0, 0
			for _, e := range entries {
				members += e.Size()
				if e.IsGroup() {
					groups++
				}
			}
			if members < cfg.ShiftSize {
				return &scheduler.NotEnoughDistinctMembersError{
					Entries:        len(entries),
					Members:        members,
					WindowCapacity: cfg.ContextSize,
					ShiftSize:      cfg.ShiftSize,
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d entries, %d members, %d groups (shift size %d, context %d)\n",
				cfg.RosterPath, len(entries), members, groups, cfg.ShiftSize, cfg.ContextSize)
			if members < cfg.ShiftSize+cfg.ContextSize {
				fmt.Fprintf(cmd.OutOrStdout(), "warning: fewer than %d members, recent names will block later shifts\n",
					cfg.ShiftSize+cfg.ContextSize)
			}
			return nil
		},
	}
}
