package main

import (
	"fmt"
	"strings"

	"github.com/BerylCAtieno/icp-builder/internal/models"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	promptStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2563EB"))
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	warnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#D97706"))
	doneStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#16A34A"))
	activeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#2563EB"))
	boxStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

const barWidth = 30

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the profile and its completion",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()
		fmt.Fprintln(cmd.OutOrStdout(), renderStatus(s.builder.Profile()))
		return nil
	},
}

func progressBar(pct int) string {
	filled := pct * barWidth / 100
	return doneStyle.Render(strings.Repeat("█", filled)) + mutedStyle.Render(strings.Repeat("░", barWidth-filled))
}

// renderStatus draws one box per section: complete, active, locked or pending.
func renderStatus(p models.ICP) string {
	status := models.StatusOf(p)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Ideal Customer Profile"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %d%%\n", progressBar(status.Percentage), status.Percentage))

	for _, sec := range status.Sections {
		var header string
		switch {
		case sec.Complete:
			header = doneStyle.Render("✓ " + sec.Title)
		case sec.Locked:
			header = mutedStyle.Render("🔒 " + sec.Title)
		case sec.Active:
			header = activeStyle.Render("● " + sec.Title)
		default:
			header = "○ " + sec.Title
		}

		lines := []string{header}
		if sec.Locked {
			lines = append(lines, mutedStyle.Render(sec.LockMessage))
		} else {
			for _, field := range sec.Key.Fields() {
				lines = append(lines, renderField(p, field))
			}
		}
		b.WriteString(boxStyle.Render(strings.Join(lines, "\n")))
		b.WriteString("\n")
	}
	return b.String()
}

func renderField(p models.ICP, field string) string {
	label := models.FieldLabel(field) + ": "
	values := p.FieldValue(field)
	if len(values) == 0 {
		return label + mutedStyle.Render(models.FieldPlaceholder(field))
	}
	return label + strings.Join(values, ", ")
}
