// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/wiki-research/internal/research"
	"github.com/pdiddy/wiki-research/internal/wiki"
	"github.com/pdiddy/wiki-research/pkg/types"
)

var researchCmd = &cobra.Command{
	Use:   "research [query...]",
	Short: "Summarize the best Wikipedia article for a query",
	Long: `Research searches Wikipedia, picks the first candidate with a substantial
summary, and prints its title, extract, link, and related pages.

By default all arguments form one query. With --parallel N each argument is a
separate query; up to N run at once and results print in argument order.

Successful results are added to the history unless --no-history is set.
--save also adds them to the saved articles.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResearch,
}

// researcher is the part of *research.Researcher the command needs.
type researcher interface {
	Research(ctx context.Context, query string) (types.ResearchResult, error)
}

// outcome is the result of one query in a research run.
type outcome struct {
	Query  string
	Result types.ResearchResult
	Err    error
}

func runResearch(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	noHistory, _ := cmd.Flags().GetBool("no-history")
	save, _ := cmd.Flags().GetBool("save")
	parallel, _ := cmd.Flags().GetInt("parallel")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	r := newResearcher(newClient(cfg))

	outcomes := researchAll(cmd.Context(), r, queriesFromArgs(args, parallel), parallel)
	return deliver(cmd.Context(), os.Stdout, outcomes, jsonOutput, !noHistory, save)
}

// deliver prints outcomes and then records the successful ones. A store
// failure never hides results that were already printed.
func deliver(ctx context.Context, w io.Writer, outcomes []outcome, jsonOutput, history, save bool) error {
	if err := report(w, outcomes, jsonOutput); err != nil {
		return err
	}

	if err := record(ctx, outcomes, history, save); err != nil {
		logger.Warn("recording results failed", zap.Error(err))
		return fmt.Errorf("recording results: %w", err)
	}

	if failed := countFailed(outcomes); failed > 0 {
		return fmt.Errorf("%d of %d queries failed", failed, len(outcomes))
	}
	return nil
}

// report writes successful results to w and a user message per failed
// query to stderr.
func report(w io.Writer, outcomes []outcome, jsonOutput bool) error {
	for _, o := range outcomes {
		if o.Err != nil {
			logger.Debug("research failed", zap.String("query", o.Query), zap.Error(o.Err))
			fmt.Fprintln(os.Stderr, research.UserMessage(o.Err, o.Query))
		}
	}

	if jsonOutput {
		return formatResultsJSON(w, outcomes)
	}
	formatResults(w, outcomes)
	return nil
}

func countFailed(outcomes []outcome) int {
	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	return failed
}

// queriesFromArgs joins args into one query, or treats each arg as its own
// query when parallel is positive.
func queriesFromArgs(args []string, parallel int) []string {
	if parallel > 0 {
		return args
	}
	return []string{strings.Join(args, " ")}
}

// researchAll runs every query with at most limit in flight and returns
// outcomes in query order. A failed query does not cancel the others.
func researchAll(ctx context.Context, r researcher, queries []string, limit int) []outcome {
	outcomes := make([]outcome, len(queries))

	var g errgroup.Group
	g.SetLimit(max(limit, 1))
	for i, q := range queries {
		g.Go(func() error {
			result, err := r.Research(ctx, q)
			outcomes[i] = outcome{Query: q, Result: result, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func record(ctx context.Context, outcomes []outcome, history, save bool) error {
	if !history && !save {
		return nil
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	for _, o := range outcomes {
		if o.Err != nil {
			continue
		}
		if history {
			if err := st.AddHistory(ctx, o.Result); err != nil {
				return err
			}
		}
		if save {
			added, err := st.Save(ctx, o.Result)
			if err != nil {
				return err
			}
			if !added {
				logger.Info("article already saved", zap.String("title", o.Result.Title))
			}
		}
	}
	return nil
}

func formatResultsJSON(w io.Writer, outcomes []outcome) error {
	results := make([]types.ResearchResult, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Err == nil {
			results = append(results, o.Result)
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if len(outcomes) == 1 {
		if len(results) == 0 {
			return nil
		}
		return enc.Encode(results[0])
	}
	return enc.Encode(results)
}

func formatResults(w io.Writer, outcomes []outcome) {
	first := true
	for _, o := range outcomes {
		if o.Err != nil {
			continue
		}
		if !first {
			fmt.Fprintln(w, strings.Repeat("-", 72))
		}
		first = false
		formatResult(w, o.Result)
	}
}

// formatResult prints one result as a short plain-text report.
func formatResult(w io.Writer, r types.ResearchResult) {
	fmt.Fprintln(w, wiki.StripMarkup(r.DisplayTitle))
	fmt.Fprintln(w, r.WikiURL)
	fmt.Fprintln(w)
	fmt.Fprintln(w, r.Extract)

	if len(r.RelatedTitles) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Related:")
		for _, t := range r.RelatedTitles {
			fmt.Fprintf(w, "  - %s\n", t)
		}
	}
}

func init() {
	researchCmd.Flags().Bool("json", false, "output results as JSON")
	researchCmd.Flags().Bool("no-history", false, "do not record results in the history")
	researchCmd.Flags().Bool("save", false, "add results to the saved articles")
	researchCmd.Flags().Int("parallel", 0, "treat each argument as a query and run up to N at once")

	rootCmd.AddCommand(researchCmd)
}
