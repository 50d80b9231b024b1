package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the profile and the conversation",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.builder.Reset(cmd.Context()); err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), warnStyle.Render("Profile cleared, but the AI chat could not be reinitialized."))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), doneStyle.Render("Profile cleared."))
		return nil
	},
}

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the Gemini API key",
}

var keySetCmd = &cobra.Command{
	Use:   "set <key>",
	Short: "Store a Gemini API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.builder.SetCredential(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), doneStyle.Render("API key saved."))
		return nil
	},
}

var keyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.builder.ClearCredential(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), doneStyle.Render("API key removed."))
		return nil
	},
}
