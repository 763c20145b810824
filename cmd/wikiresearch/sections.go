// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/wiki-research/internal/research"
	"github.com/pdiddy/wiki-research/pkg/types"
)

var sectionsCmd = &cobra.Command{
	Use:   "sections <title...>",
	Short: "Print the section outline of an article",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := strings.Join(args, " ")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		sections, err := newClient(cfg).Sections(cmd.Context(), title)
		if err != nil {
			fmt.Fprintln(os.Stderr, research.UserMessage(err, title))
			return err
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(sections)
		}
		formatSections(os.Stdout, title, sections)
		return nil
	},
}

// formatSections prints sections indented by level.
func formatSections(w io.Writer, title string, sections []types.Section) {
	if len(sections) == 0 {
		fmt.Fprintf(w, "No sections found for %q.\n", title)
		return
	}
	for _, s := range sections {
		indent := strings.Repeat("  ", max(s.Level-1, 0))
		fmt.Fprintf(w, "%s%s %s\n", indent, s.Number, s.Title)
	}
}

func init() {
	sectionsCmd.Flags().Bool("json", false, "output sections as JSON")

	rootCmd.AddCommand(sectionsCmd)
}
