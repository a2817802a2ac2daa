// ABOUTME: CLI commands that store and forget the Oura access token in the system keyring
// ABOUTME: The token is read by 'olympus import oura' when no flag or env var is set
package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/harper/olympus/internal/keyring"
)

// NewOuraCmd creates the oura command group
func NewOuraCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "oura",
		Short: "Manage the Oura personal access token",
		Long: `Store or remove your Oura personal access token in the system keyring.

Create a token at https://cloud.ouraring.com/personal-access-tokens.`,
	}

	var token string
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Save an Oura token to the keyring",
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				err := huh.NewInput().
					Title("Oura Personal Access Token").
					EchoMode(huh.EchoModePassword).
					Value(&token).
					Run()
				if err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						return nil
					}
					return fmt.Errorf("reading token: %w", err)
				}
			}
			token = strings.TrimSpace(token)
			if token == "" {
				return fmt.Errorf("token cannot be empty")
			}

			if err := keyring.SetOuraToken(token); err != nil {
				return err
			}
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Oura token saved to keyring\n")
			}
			return nil
		},
	}
	loginCmd.Flags().StringVar(&token, "token", "", "Token to save (prompted when omitted)")

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove the Oura token from the keyring",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := keyring.DeleteOuraToken()
			if errors.Is(err, keyring.ErrNotFound) {
				if !quiet {
					fmt.Fprintf(cmd.OutOrStdout(), "No Oura token stored\n")
				}
				return nil
			}
			if err != nil {
				return err
			}
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Oura token removed\n")
			}
			return nil
		},
	}

	cmd.AddCommand(loginCmd, logoutCmd)
	return cmd
}
