package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcus/t45/internal/challenge"
	"github.com/marcus/t45/internal/dateutil"
	"github.com/marcus/t45/internal/models"
	"github.com/marcus/t45/internal/output"
)

var (
	logDate        string
	logMindfulness int
	logReading     string
	logWater       int
	logDiet        bool
	logWorkout     bool
	logDetox       bool
)

var logCmd = &cobra.Command{
	Use:     "log",
	Short:   "Log today's task progress",
	GroupID: "challenge",
	Example: `  t45 log --mindfulness 15 --water 6
  t45 log --reading "finished chapter 3" --diet --workout --detox
  t45 log --date 2024-01-08 --water 8`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine(cmd.Context())
		if err != nil {
			return err
		}

		state := eng.State()
		if !state.IsStarted {
			return fmt.Errorf("no challenge running; start one with `t45 start`")
		}

		date := logDate
		if date == "" {
			date = dateutil.Today()
		}
		if !dateutil.IsValid(date) {
			return fmt.Errorf("invalid date %q: want YYYY-MM-DD", date)
		}

		// Earlier entries for the same date carry forward, so partial
		// logs accumulate over the day.
		tasks := models.DefaultTasks()
		if prev, ok := state.DailyProgress[date]; ok {
			tasks = prev.Tasks
		}

		flags := cmd.Flags()
		for i := range tasks {
			switch tasks[i].ID {
			case models.TaskMindfulness:
				if flags.Changed("mindfulness") {
					tasks[i].Value = models.NumberValue(logMindfulness)
					tasks[i].Completed = tasks[i].DeriveCompleted()
				}
			case models.TaskGrowth:
				if flags.Changed("reading") {
					tasks[i].Value = models.TextValue(logReading)
					tasks[i].Completed = tasks[i].DeriveCompleted()
				}
			case models.TaskHydration:
				if flags.Changed("water") {
					tasks[i].Value = models.NumberValue(logWater)
					tasks[i].Completed = tasks[i].DeriveCompleted()
				}
			case models.TaskNutrition:
				if flags.Changed("diet") {
					tasks[i].Completed = logDiet
				}
			case models.TaskMovement:
				if flags.Changed("workout") {
					tasks[i].Completed = logWorkout
				}
			case models.TaskDigital:
				if flags.Changed("detox") {
					tasks[i].Completed = logDetox
				}
			}
		}

		outcome, err := eng.SaveDailyProgress(cmd.Context(), date, tasks)
		if err != nil {
			return err
		}
		if outcome == challenge.SaveStreakBroken {
			output.Warning("You missed a day, so the run is over. The challenge has been reset; start again with `t45 start`.")
			return nil
		}

		state = eng.State()
		record := state.DailyProgress[date]

		fmt.Println(output.FormatDay(state.CurrentDay))
		for _, task := range record.Tasks {
			fmt.Println(output.TaskLine(task))
		}
		if record.Completed {
			output.Success("All six tasks done for %s. %s", date, output.FormatStreak(state.StreakDays))
		} else {
			output.Info("Progress saved for %s.", date)
		}
		return nil
	},
}

func init() {
	logCmd.Flags().StringVar(&logDate, "date", "", "date to log (YYYY-MM-DD, default today)")
	logCmd.Flags().IntVar(&logMindfulness, "mindfulness", 0, "minutes of mindfulness practice")
	logCmd.Flags().StringVar(&logReading, "reading", "", "personal growth reading notes")
	logCmd.Flags().IntVar(&logWater, "water", 0, "glasses of water consumed")
	logCmd.Flags().BoolVar(&logDiet, "diet", false, "followed the diet")
	logCmd.Flags().BoolVar(&logWorkout, "workout", false, "completed the workout")
	logCmd.Flags().BoolVar(&logDetox, "detox", false, "kept the digital detox")
	rootCmd.AddCommand(logCmd)
}
