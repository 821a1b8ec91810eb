// Package cmd implements the t45 CLI commands.
package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/marcus/t45/internal/challenge"
	"github.com/marcus/t45/internal/output"
	"github.com/marcus/t45/internal/remote"
	"github.com/marcus/t45/internal/snapshot"
	"github.com/marcus/t45/internal/syncconfig"
)

var version string

// SetVersion sets the version string
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

var rootCmd = &cobra.Command{
	Use:   "t45",
	Short: "Track a 45-day habit challenge",
	Long: `t45 - Track a 45-day habit challenge from the terminal.

Six daily tasks, one rule: complete every task every day. Miss a day and
the challenge starts over. Progress lives on this device and, once you
log in, syncs to your account.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "challenge", Title: "Challenge Commands:"},
		&cobra.Group{ID: "system", Title: "System Commands:"},
	)
	rootCmd.SetHelpCommandGroupID("system")
	rootCmd.SetCompletionCommandGroupID("system")
}

// newEngine builds the challenge engine over the config-dir snapshot slot
// and reconciles it against the signed-in identity, if any.
func newEngine(ctx context.Context) (*challenge.Engine, error) {
	dir, err := syncconfig.ConfigDir()
	if err != nil {
		return nil, err
	}

	eng := challenge.New(snapshot.New(dir), challenge.WithWarnFunc(func(format string, args ...any) {
		output.Warning(format, args...)
	}))

	var repo challenge.Repository
	if syncconfig.IsAuthenticated() {
		repo = remote.New(syncconfig.GetServerURL(), syncconfig.GetAPIKey())
	}
	if err := eng.SetIdentity(ctx, repo); err != nil {
		return nil, err
	}
	return eng, nil
}
