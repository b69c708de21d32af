// Package cmd provides the command-line interface for gh-repo-insights.
// It defines the Cobra command structure, flag handling, and command execution
// for extracting repository insights and branch lineage graphs.
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// Version is set by the main package.
var Version = "dev"

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	configFile  string
	stdout      bool
	debug       bool
	logDir      string
	apiURL      string
	rps         float64
	maxRetries  int
	timeout     time.Duration
	reportFile  string
	metricsFile string
}

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Extract GitHub repository insights and branch lineage graphs",
		Long: `gh-repo-insights extracts repository metadata (stars, forks, contributors,
pull requests, latest releases) from the GitHub API and reconstructs the linear
commit history of a branch merged into the trunk, written as a Graphviz DOT file.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			// fallback message, extraction logic is in a subcommand
			fmt.Println("Use `insights run <token> <owner> <repo> --branch <branch>` to start.")
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configFile, "config", "c", "", "YAML configuration file")
	pf.BoolVar(&opts.stdout, "stdout", false, "Log to the console instead of a log file")
	pf.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	pf.StringVar(&opts.logDir, "log-dir", "", "Directory for log files (default \"logs\", env LOG_DIR)")
	pf.StringVar(&opts.apiURL, "api-url", "", "GitHub API base URL (env GH_API_URL)")
	pf.Float64Var(&opts.rps, "rps", 0, "Maximum API requests per second (0 uses the default)")
	pf.IntVar(&opts.maxRetries, "max-retries", 0, "Attempts per API request, including the first (0 uses the default)")
	pf.DurationVar(&opts.timeout, "timeout", 0, "Per-request timeout (0 uses the default)")
	pf.StringVar(&opts.reportFile, "report-file", "", "Write the repository report as JSON to this file")
	pf.StringVar(&opts.metricsFile, "metrics-file", "", "Write API metrics in prometheus text format to this file")

	cmd.AddCommand(
		newExtractCmd(opts, extractRun),
		newExtractCmd(opts, extractReport),
		newExtractCmd(opts, extractGraph),
	)
	return cmd
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
