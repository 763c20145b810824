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

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "Manage saved articles (list, remove, clear, export)",
	Long: `Saved manages the reading list. Articles are added with research --save
or through the API; each title is saved at most once.`,
}

var savedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved articles, most recently saved first",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		articles, err := st.Saved(cmd.Context())
		if err != nil {
			return err
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(articles)
		}
		formatSaved(os.Stdout, articles)
		return nil
	},
}

var savedRemoveCmd = &cobra.Command{
	Use:   "remove <title...>",
	Short: "Remove a saved article by title",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := strings.Join(args, " ")

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		removed, err := st.RemoveSaved(cmd.Context(), title)
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("%q is not saved", title)
		}
		fmt.Printf("Removed %q.\n", title)
		return nil
	},
}

var savedClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all saved articles",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.ClearSaved(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Saved articles cleared.")
		return nil
	},
}

var savedExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export saved articles and history to YAML or JSON",
	RunE:  runExport,
}

func formatSaved(w io.Writer, articles []types.SavedArticle) {
	if len(articles) == 0 {
		fmt.Fprintln(w, "No saved articles.")
		return
	}

	fmt.Fprintf(w, "%-3s  %-35s  %-50s  %s\n", "#", "Title", "Extract", "Saved")
	fmt.Fprintln(w, strings.Repeat("-", 120))
	for i, a := range articles {
		extract := strings.Join(strings.Fields(a.Extract), " ")
		fmt.Fprintf(w, "%-3d  %-35s  %-50s  %s\n", i+1, clip(a.Title, 35), clip(extract, 50), a.Timestamp)
	}
	fmt.Fprintf(w, "\n%d saved\n", len(articles))
}

func init() {
	savedListCmd.Flags().Bool("json", false, "output articles as JSON")
	savedExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	savedCmd.AddCommand(savedListCmd)
	savedCmd.AddCommand(savedRemoveCmd)
	savedCmd.AddCommand(savedClearCmd)
	savedCmd.AddCommand(savedExportCmd)

	rootCmd.AddCommand(savedCmd)
}
