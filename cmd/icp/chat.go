package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/BerylCAtieno/icp-builder/internal/builder"
	"github.com/BerylCAtieno/icp-builder/internal/models"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the ICP interview",
	Long: `Chat with the assistant one line at a time. The profile is saved after
every turn.

Commands:
  /status  show profile progress
  /reset   start over with an empty profile
  /quit    leave`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()
		return runChat(cmd, s.builder, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func runChat(cmd *cobra.Command, b *builder.Builder, in io.Reader, out io.Writer) error {
	if !b.HasCredential() {
		fmt.Fprintln(out, warnStyle.Render("No API key found. Run 'icp key set <key>' first."))
	}
	for _, msg := range b.Transcript() {
		printMessage(out, msg)
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, promptStyle.Render("you › "))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/status":
			fmt.Fprintln(out, renderStatus(b.Profile()))
			continue
		case "/reset":
			if err := b.Reset(cmd.Context()); err != nil {
				fmt.Fprintln(out, warnStyle.Render("Reset, but the AI chat could not be reinitialized."))
			}
			for _, msg := range b.Transcript() {
				printMessage(out, msg)
			}
			continue
		}

		res, err := b.Send(cmd.Context(), line)
		if err != nil {
			fmt.Fprintln(out, warnStyle.Render(err.Error()))
			continue
		}
		printMessage(out, res.Reply)
		if res.Navigate != "" {
			fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("Profile %d%% complete. Now on %s.", res.Status.Percentage, res.Navigate.Title())))
		}
	}
}

func printMessage(out io.Writer, msg models.ChatMessage) {
	if msg.Role == models.RoleUser {
		fmt.Fprintln(out, promptStyle.Render("you › ")+msg.Text)
		return
	}
	fmt.Fprintln(out, assistantStyle.Render("icp › ")+msg.Text)
}
