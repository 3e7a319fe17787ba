package cli

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const defaultServer = "http://localhost:8080"

type options struct {
	server  string
	timeout time.Duration
	jsonOut bool
	noColor bool
}

func (o *options) client() *Client {
	return NewClient(o.server, o.timeout)
}

// NewRootCommand creates the faqctl root command.
func NewRootCommand(version string) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "faqctl",
		Short: "Operate a smart FAQ server",
		Long: `faqctl drives a running smart FAQ server over its HTTP API.

It can seed the catalog, run semantic searches, request generated answers,
manage FAQ entries, submit feedback and print the analytics summary.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}

	server := os.Getenv("FAQ_SERVER")
	if server == "" {
		server = defaultServer
	}

	rootCmd.PersistentFlags().StringVarP(&opts.server, "server", "s", server, "server base URL (env FAQ_SERVER)")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 60*time.Second, "request timeout")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "print raw JSON responses")
	rootCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(newSeedCommand(opts))
	rootCmd.AddCommand(newSearchCommand(opts))
	rootCmd.AddCommand(newAskCommand(opts))
	rootCmd.AddCommand(newFAQsCommand(opts))
	rootCmd.AddCommand(newFeedbackCommand(opts))
	rootCmd.AddCommand(newAnalyticsCommand(opts))

	return rootCmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
