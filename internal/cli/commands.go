package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/yanqian/smart-faq/internal/domain/analytics"
	"github.com/yanqian/smart-faq/internal/domain/faq"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	scoreColor  = color.New(color.FgGreen)
	mutedColor  = color.New(color.FgHiBlack)
	okColor     = color.New(color.FgGreen, color.Bold)
)

func newSeedCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the configured starter corpus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := opts.client().Seed(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return writeJSON(out, map[string]int{"count": count})
			}
			okColor.Fprintf(out, "Seeded %d FAQs\n", count)
			return nil
		},
	}
}

func newSearchCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find FAQs similar to a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.client().Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return writeJSON(out, resp)
			}
			if len(resp.Results) == 0 {
				fmt.Fprintln(out, "No matching FAQs")
				return nil
			}
			headerColor.Fprintf(out, "%d result(s) in %dms%s\n", len(resp.Results), resp.ResponseTime, cachedSuffix(resp.Cached))
			for _, r := range resp.Results {
				printResult(cmd, r)
			}
			return nil
		},
	}
}

func newAskCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Get a generated answer grounded in the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.client().Ask(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return writeJSON(out, resp)
			}
			fmt.Fprintln(out, resp.Answer)
			if len(resp.Sources) == 0 {
				return nil
			}
			fmt.Fprintln(out)
			headerColor.Fprintf(out, "Sources (confidence %.2f)%s\n", resp.Confidence, cachedSuffix(resp.Cached))
			for _, r := range resp.Sources {
				printResult(cmd, r)
			}
			if resp.QueryID != "" {
				mutedColor.Fprintf(out, "query id: %s\n", resp.QueryID)
			}
			return nil
		},
	}
}

func newFAQsCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "faqs",
		Short: "Manage catalog entries",
	}
	cmd.AddCommand(newFAQsListCommand(opts))
	cmd.AddCommand(newFAQsAddCommand(opts))
	cmd.AddCommand(newFAQsDeleteCommand(opts))
	return cmd
}

func newFAQsListCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every FAQ, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := opts.client().ListFAQs(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return writeJSON(out, items)
			}
			if len(items) == 0 {
				fmt.Fprintln(out, "Catalog is empty")
				return nil
			}
			for _, item := range items {
				headerColor.Fprintf(out, "[%s] ", item.ID)
				fmt.Fprintln(out, item.Question)
				if item.Category != "" {
					mutedColor.Fprintf(out, "  category: %s\n", item.Category)
				}
			}
			return nil
		},
	}
}

func newFAQsAddCommand(opts *options) *cobra.Command {
	var item faq.FAQ

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add or replace an FAQ",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.client().UpsertFAQ(cmd.Context(), item); err != nil {
				return err
			}
			okColor.Fprintf(cmd.OutOrStdout(), "Indexed FAQ %s\n", item.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&item.ID, "id", "", "FAQ id")
	cmd.Flags().StringVarP(&item.Question, "question", "q", "", "question text")
	cmd.Flags().StringVarP(&item.Answer, "answer", "a", "", "answer text")
	cmd.Flags().StringVar(&item.Category, "category", "", "optional category")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("question")
	_ = cmd.MarkFlagRequired("answer")

	return cmd
}

func newFAQsDeleteCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove an FAQ",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.client().DeleteFAQ(cmd.Context(), args[0]); err != nil {
				return err
			}
			okColor.Fprintf(cmd.OutOrStdout(), "Deleted FAQ %s\n", args[0])
			return nil
		},
	}
}

func newFeedbackCommand(opts *options) *cobra.Command {
	var req analytics.FeedbackRequest

	cmd := &cobra.Command{
		Use:   "feedback <query-id>",
		Short: "Rate an answer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.QueryID = args[0]
			if err := opts.client().Feedback(cmd.Context(), req); err != nil {
				return err
			}
			okColor.Fprintln(cmd.OutOrStdout(), "Feedback recorded")
			return nil
		},
	}

	cmd.Flags().IntVarP(&req.Rating, "rating", "r", 5, "rating from 1 to 5")
	cmd.Flags().BoolVar(&req.Helpful, "helpful", false, "mark the answer as helpful")
	cmd.Flags().StringVarP(&req.Comment, "comment", "m", "", "free-form comment")

	return cmd
}

func newAnalyticsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "analytics",
		Short: "Show popular queries and feedback stats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := opts.client().Analytics(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return writeJSON(out, summary)
			}
			headerColor.Fprintln(out, "Popular queries")
			if len(summary.PopularQueries) == 0 {
				mutedColor.Fprintln(out, "  none yet")
			}
			for _, q := range summary.PopularQueries {
				fmt.Fprintf(out, "  %-40s %4d  avg %.0fms\n", q.Query, q.Count, q.AvgTimeMs)
			}
			stats := summary.FeedbackStats
			headerColor.Fprintln(out, "Feedback")
			fmt.Fprintf(out, "  total %d  helpful %d  avg rating %.2f\n", stats.TotalFeedback, stats.HelpfulCount, stats.AvgRating)
			return nil
		},
	}
}

func printResult(cmd *cobra.Command, r faq.SearchResult) {
	out := cmd.OutOrStdout()
	scoreColor.Fprintf(out, "  %.3f ", r.Similarity)
	fmt.Fprintf(out, "[%s] %s\n", r.ID, r.Question)
	mutedColor.Fprintf(out, "        %s\n", r.Answer)
}

func cachedSuffix(cached bool) string {
	if cached {
		return " (cached)"
	}
	return ""
}
