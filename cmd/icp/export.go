package main

import (
	"fmt"
	"os"
	"time"

	"github.com/BerylCAtieno/icp-builder/internal/export"
	"github.com/BerylCAtieno/icp-builder/internal/models"
	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportRender bool
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the profile as Markdown or JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		p := s.builder.Profile()
		if !p.HasAnyData() {
			return fmt.Errorf("nothing to export yet; chat first")
		}
		out, err := renderExport(p, exportFormat, exportRender, time.Now())
		if err != nil {
			return err
		}

		if exportOut == "" {
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		}
		if err := os.WriteFile(exportOut, []byte(out), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", exportOut, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), doneStyle.Render("Saved "+exportOut))
		return nil
	},
}

func renderExport(p models.ICP, format string, render bool, now time.Time) (string, error) {
	switch format {
	case "json":
		raw, err := export.JSON(p)
		if err != nil {
			return "", err
		}
		return string(raw) + "\n", nil
	case "markdown", "md":
		md := export.Markdown(p, now)
		if !render {
			return md, nil
		}
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		if err != nil {
			return "", fmt.Errorf("create renderer: %w", err)
		}
		return renderer.Render(md)
	default:
		return "", fmt.Errorf("unknown format %q: use markdown or json", format)
	}
}
