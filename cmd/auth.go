package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marcus/t45/internal/output"
	"github.com/marcus/t45/internal/remote"
	"github.com/marcus/t45/internal/syncconfig"
)

var (
	authLoginKey    string
	authLoginEmail  string
	authLoginServer string
)

var authCmd = &cobra.Command{
	Use:     "auth",
	Short:   "Manage sync authentication",
	GroupID: "system",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the sync server with an API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		serverURL := authLoginServer
		if serverURL == "" {
			serverURL = syncconfig.GetServerURL()
		}

		key := strings.TrimSpace(authLoginKey)
		if key == "" {
			fmt.Print("API key: ")
			reader := bufio.NewReader(os.Stdin)
			line, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("read api key: %w", err)
			}
			key = strings.TrimSpace(line)
		}
		if key == "" {
			return fmt.Errorf("api key required")
		}

		client := remote.New(serverURL, key)
		if _, err := client.HealthCheck(cmd.Context()); err != nil {
			output.Error("server unreachable: %v", err)
			return err
		}
		if _, err := client.ActiveChallenge(cmd.Context()); err != nil {
			if errors.Is(err, remote.ErrUnauthorized) {
				return fmt.Errorf("api key rejected by %s", serverURL)
			}
			return err
		}

		if err := syncconfig.SaveAuth(&syncconfig.AuthCredentials{
			APIKey:    key,
			Email:     strings.TrimSpace(authLoginEmail),
			ServerURL: serverURL,
		}); err != nil {
			output.Error("save credentials: %v", err)
			return err
		}

		output.Success("Logged in to %s", serverURL)

		// Reconcile now so local-only progress migrates right away.
		eng, err := newEngine(cmd.Context())
		if err != nil {
			return err
		}
		if st := eng.State(); st.IsStarted {
			output.Info("Challenge on day %d of 45 is now %s.", st.CurrentDay, eng.Phase())
		}
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out from the sync server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := syncconfig.ClearAuth(); err != nil {
			output.Error("logout: %v", err)
			return err
		}
		fmt.Println("Logged out. Challenge progress stays on this device.")
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication status",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := syncconfig.LoadAuth()
		if err != nil {
			output.Error("load auth: %v", err)
			return err
		}

		if creds == nil || creds.APIKey == "" {
			fmt.Println("Not logged in.")
			return nil
		}

		keyPrefix := creds.APIKey
		if len(keyPrefix) > 12 {
			keyPrefix = keyPrefix[:12] + "..."
		}

		if creds.Email != "" {
			fmt.Printf("Email:  %s\n", creds.Email)
		}
		fmt.Printf("Server: %s\n", creds.ServerURL)
		fmt.Printf("Key:    %s\n", keyPrefix)
		return nil
	},
}

func init() {
	authLoginCmd.Flags().StringVar(&authLoginKey, "key", "", "API key (prompted if omitted)")
	authLoginCmd.Flags().StringVar(&authLoginEmail, "email", "", "email to record with the credentials")
	authLoginCmd.Flags().StringVar(&authLoginServer, "server", "", "sync server URL")
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}
