package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcus/t45/internal/dateutil"
	"github.com/marcus/t45/internal/models"
	"github.com/marcus/t45/internal/output"
	"github.com/marcus/t45/internal/syncconfig"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show challenge progress",
	GroupID: "challenge",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine(cmd.Context())
		if err != nil {
			return err
		}

		state := eng.State()
		if statusJSON {
			return output.JSON(state)
		}

		if !state.IsStarted {
			output.Info("No challenge running. Start one with `t45 start`.")
			return nil
		}

		fmt.Println(output.FormatDay(state.CurrentDay))
		fmt.Println(output.FormatProgressBar(state.CurrentDay, 30))
		fmt.Printf("Started %s   %s\n", state.StartDate, output.FormatStreak(state.StreakDays))

		today := dateutil.Today()
		fmt.Println()
		if record, ok := state.DailyProgress[today]; ok {
			fmt.Println(output.Title("Today:"))
			for _, task := range record.Tasks {
				fmt.Println(output.TaskLine(task))
			}
		} else {
			fmt.Println(output.Title("Today:"))
			for _, task := range models.DefaultTasks() {
				fmt.Println(output.TaskLine(task))
			}
			output.Info("\nNothing logged yet today. Use `t45 log`.")
		}

		fmt.Println()
		if syncconfig.IsAuthenticated() {
			if state.ChallengeID != "" {
				output.Info("Synced to your account (%s).", eng.Phase())
			} else {
				output.Info("Signed in; this challenge is not synced yet (%s).", eng.Phase())
			}
		} else {
			output.Info("Progress is stored on this device only. `t45 auth login` to sync.")
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output state as JSON")
	rootCmd.AddCommand(statusCmd)
}
