package cmd

import (
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/marcus/t45/internal/output"
)

var resetForce bool

var resetCmd = &cobra.Command{
	Use:     "reset",
	Short:   "Abandon the current challenge",
	GroupID: "challenge",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine(cmd.Context())
		if err != nil {
			return err
		}

		if !resetForce {
			confirmed := false
			form := huh.NewForm(huh.NewGroup(
				huh.NewConfirm().
					Title("Abandon the current challenge?").
					Description("All progress is cleared and the remote record, if any, is marked failed.").
					Affirmative("Reset").
					Negative("Keep going").
					Value(&confirmed),
			))
			if err := form.Run(); err != nil {
				return err
			}
			if !confirmed {
				output.Info("Kept the current challenge.")
				return nil
			}
		}

		if err := eng.Reset(cmd.Context()); err != nil {
			return err
		}

		output.Success("Challenge reset. Start a new one with `t45 start`.")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVarP(&resetForce, "force", "f", false, "skip the confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}
