package cmd

import (
	"github.com/spf13/cobra"

	"github.com/marcus/t45/internal/output"
)

var startCmd = &cobra.Command{
	Use:     "start",
	Short:   "Start a fresh 45-day challenge",
	GroupID: "challenge",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine(cmd.Context())
		if err != nil {
			return err
		}

		if st := eng.State(); st.IsStarted {
			output.Warning("a challenge started on %s is already running; starting over abandons it", st.StartDate)
		}

		if err := eng.Start(cmd.Context()); err != nil {
			return err
		}

		st := eng.State()
		output.Success("Challenge started on %s. Day 1 of 45 — log today's tasks with `t45 log`.", st.StartDate)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
