// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/wiki-research/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List, clear, or export recent research",
	Long: `History shows the most recent successful lookups, newest first. Researching
a title again moves it to the top instead of adding a duplicate.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent research, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		entries, err := st.History(cmd.Context())
		if err != nil {
			return err
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}
		formatHistory(os.Stdout, entries)
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all history entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.ClearHistory(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("History cleared.")
		return nil
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export history and saved articles to YAML or JSON",
	Long: `Export writes the history and the saved articles to export.yaml or
export.json in the data directory.`,
	RunE: runExport,
}

// runExport is shared by history export and saved export.
func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	var path string
	switch format {
	case "yaml", "":
		path, err = st.ExportYAML(cmd.Context())
	case "json":
		path, err = st.ExportJSON(cmd.Context())
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Println("Exported to", path)
	return nil
}

func formatHistory(w io.Writer, entries []types.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No history yet.")
		return
	}

	fmt.Fprintf(w, "%-3s  %-40s  %-25s  %s\n", "#", "Title", "Query", "Researched")
	fmt.Fprintln(w, strings.Repeat("-", 96))
	for i, e := range entries {
		fmt.Fprintf(w, "%-3d  %-40s  %-25s  %s\n", i+1, clip(e.Title, 40), clip(e.Query, 25), e.Timestamp)
	}
	fmt.Fprintf(w, "\n%d entries\n", len(entries))
}

// clip shortens s to n runes, ending in "..." when cut.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	historyListCmd.Flags().Bool("json", false, "output entries as JSON")
	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyExportCmd)

	rootCmd.AddCommand(historyCmd)
}
