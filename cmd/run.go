package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OzBlumenfeld/GitHub-repo-insights/internal/config"
	"github.com/OzBlumenfeld/GitHub-repo-insights/internal/stats"
	"github.com/spf13/cobra"
)

// extractKind selects which halves of the tool a subcommand runs.
type extractKind struct {
	use     string
	short   string
	example string
	report  bool
	graph   bool
}

var (
	extractRun = extractKind{
		use:    "run [token] <owner> <repo>",
		short:  "Build the repository report and the branch lineage graph",
		report: true,
		graph:  true,
		example: `  insights run $GITHUB_TOKEN octo demo --branch feature
  insights run octo demo -b feature -t main -O feature.dot
  insights run octo demo -b feature --local-repo ./demo --report-file report.json`,
	}
	extractReport = extractKind{
		use:    "report [token] <owner> <repo>",
		short:  "Build the repository report only",
		report: true,
		example: `  insights report octo demo --releases 5
  insights report octo demo --report-file report.json --stdout`,
	}
	extractGraph = extractKind{
		use:   "graph [token] <owner> <repo>",
		short: "Build the branch lineage graph only",
		graph: true,
		example: `  insights graph octo demo --branch feature
  insights graph octo demo -b feature --local-repo ./demo -O feature.gv`,
	}
)

// extractOptions holds the flags local to an extraction subcommand.
type extractOptions struct {
	branch    string
	trunk     string
	output    string
	localRepo string
	releases  int
}

// runFunc is the entry point invoked by the extraction subcommands.
var runFunc = stats.RunWithContext

func newExtractCmd(global *globalOptions, kind extractKind) *cobra.Command {
	opts := &extractOptions{}

	cmd := &cobra.Command{
		Use:     kind.use,
		Short:   kind.short,
		Example: kind.example,
		Args:    cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, global, opts, args)
			if err != nil {
				return err
			}

			// Set up context with timeout and signal handling
			// 24-hour timeout prevents indefinite hangs if GitHub API becomes unresponsive
			ctx, cancel := context.WithTimeout(context.Background(), 24*time.Hour)
			defer cancel()
			stop := handleSignals(cancel)
			defer stop()

			return runFunc(ctx, stats.Config{
				Config:  cfg,
				Report:  kind.report,
				Graph:   kind.graph,
				Version: Version,
			})
		},
	}

	f := cmd.Flags()
	if kind.graph {
		f.StringVarP(&opts.branch, "branch", "b", "", "Feature branch merged into the trunk")
		f.StringVarP(&opts.trunk, "trunk", "t", "", "Trunk branch (default \"master\")")
		f.StringVarP(&opts.output, "output", "O", "", "Graph output file, .dot or .gv (default \"graph.dot\")")
		f.StringVar(&opts.localRepo, "local-repo", "", "Read commits from a local clone instead of the API")
	}
	if kind.report {
		f.IntVar(&opts.releases, "releases", 0, "Number of latest releases to log (default 3, env GH_FETCH_REPO_RELEASES_COUNT)")
	}
	return cmd
}

// buildConfig layers defaults, the optional config file, the environment,
// the positional arguments and finally the flags set on the command line.
func buildConfig(cmd *cobra.Command, global *globalOptions, opts *extractOptions, args []string) (config.Config, error) {
	cfg := config.Default()
	if global.configFile != "" {
		if err := config.LoadFile(global.configFile, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return cfg, err
	}

	switch len(args) {
	case 3:
		cfg.Token, cfg.Owner, cfg.Repo = args[0], args[1], args[2]
	case 2:
		cfg.Owner, cfg.Repo = args[0], args[1]
	default:
		return cfg, fmt.Errorf("expected [token] <owner> <repo>, got %d arguments", len(args))
	}

	changed := cmd.Flags().Changed
	if changed("stdout") {
		cfg.ToStdout = global.stdout
	}
	if changed("debug") {
		cfg.Debug = global.debug
	}
	if changed("log-dir") {
		cfg.LogDir = global.logDir
	}
	if changed("api-url") {
		cfg.BaseURL = global.apiURL
	}
	if changed("rps") {
		cfg.RequestsPerSecond = global.rps
	}
	if changed("max-retries") {
		cfg.MaxRetries = global.maxRetries
	}
	if changed("timeout") {
		cfg.Timeout = global.timeout
	}
	if changed("report-file") {
		cfg.ReportFile = global.reportFile
	}
	if changed("metrics-file") {
		cfg.MetricsFile = global.metricsFile
	}
	if changed("branch") {
		cfg.Branch = opts.branch
	}
	if changed("trunk") {
		cfg.Trunk = opts.trunk
	}
	if changed("output") {
		cfg.OutputFile = opts.output
	}
	if changed("local-repo") {
		cfg.LocalRepo = opts.localRepo
	}
	if changed("releases") {
		cfg.ReleasesLimit = opts.releases
	}

	if cfg.Token == "" {
		fmt.Fprintf(os.Stderr, "Warning: no token given (argument or %s); unauthenticated requests are limited to 60 per hour\n", config.EnvToken)
	}
	return cfg, nil
}

// handleSignals cancels the run on SIGINT or SIGTERM. A second SIGINT
// forces an exit. The returned func stops signal delivery.
func handleSignals(cancel context.CancelFunc) func() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		// Wait for first signal
		var sig os.Signal
		select {
		case sig = <-sigChan:
		case <-done:
			return
		}

		if sig == syscall.SIGTERM {
			fmt.Fprintln(os.Stderr, "\nReceived termination signal (SIGTERM), shutting down gracefully...")
		} else {
			fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down gracefully... (press Ctrl-C again to force quit)")
		}
		cancel()

		// For SIGTERM (from timeout/systemd), don't wait for second signal - just exit gracefully
		if sig == syscall.SIGTERM {
			return
		}

		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\nForce quitting...")
			os.Exit(130) // Standard exit code for SIGINT
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigChan)
		close(done)
	}
}
