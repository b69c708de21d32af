// This file (processor.go) contains the main orchestration logic. It wires
// logging, metrics and the API client, runs the requested halves of the tool
// and writes the artifacts.
//
// Key features:
//   - Repository report (releases, stars, forks, contributors, pull requests).
//   - Branch lineage graph from the GitHub API or a local clone.
//   - Rate limit reporting before and after the run.
//   - Optional JSON report and prometheus textfile.
//   - Context-aware cancellation support.
package stats

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/OzBlumenfeld/GitHub-repo-insights/internal/config"
	"github.com/OzBlumenfeld/GitHub-repo-insights/internal/ghapi"
	"github.com/OzBlumenfeld/GitHub-repo-insights/internal/graph"
	"github.com/OzBlumenfeld/GitHub-repo-insights/internal/lineage"
	"github.com/OzBlumenfeld/GitHub-repo-insights/internal/localgit"
	"github.com/OzBlumenfeld/GitHub-repo-insights/internal/logging"
	"github.com/OzBlumenfeld/GitHub-repo-insights/internal/metrics"
	"github.com/OzBlumenfeld/GitHub-repo-insights/internal/output"
	"github.com/OzBlumenfeld/GitHub-repo-insights/internal/report"
	"github.com/OzBlumenfeld/GitHub-repo-insights/internal/state"
	"github.com/pterm/pterm"
)

// Config holds everything a run needs: the layered configuration plus which
// halves of the tool to run.
//
// Zero value behavior:
//   - Report and Graph both false: nothing to do, RunWithContext returns an error
//   - Version empty: the banner shows "dev"
type Config struct {
	config.Config

	Report  bool   // Build the repository report
	Graph   bool   // Resolve the branch lineage and write the graph
	Version string // Version string for display in banner (set by main package)

	// Status overrides the process-wide API bookkeeping; tests set it.
	Status *state.Status
}

func (c Config) mode() string {
	switch {
	case c.Report && c.Graph:
		return "report + graph"
	case c.Report:
		return "report"
	default:
		return "graph"
	}
}

// outcome collects what the tasks produced for the final display.
type outcome struct {
	report  *report.Report
	lineage *lineage.Result
	files   []string
}

// setupAndValidate performs initial validation for the run.
func setupAndValidate(cfg *Config) error {
	if !cfg.Report && !cfg.Graph {
		return errors.New("nothing to do: enable the report, the graph or both")
	}

	if err := cfg.Validate(cfg.Graph, cfg.Report); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	var err error
	if cfg.Graph {
		if cfg.OutputFile, err = validateOutputPath(cfg.OutputFile, graphExtensions); err != nil {
			return err
		}
	}
	if cfg.ReportFile != "" {
		if cfg.ReportFile, err = validateOutputPath(cfg.ReportFile, reportExtensions); err != nil {
			return err
		}
	}
	if cfg.MetricsFile != "" {
		if cfg.MetricsFile, err = validateOutputPath(cfg.MetricsFile, metricsExtensions); err != nil {
			return err
		}
	}
	return nil
}

// printBanner displays the startup banner with version information.
func printBanner(version string) {
	if version == "" {
		version = "dev"
	}

	pterm.DefaultBox.WithBoxStyle(pterm.NewStyle(pterm.FgCyan)).
		WithHorizontalString("═").
		WithVerticalString("║").
		Println(fmt.Sprintf("🔎 GitHub Repo Insights • %s", version))
	pterm.Println()
}

// RunWithContext runs the configured report and graph for one repository.
//
// Returns:
//   - nil on success (all requested artifacts written)
//   - validation error for bad names, refs or output paths
//   - context.Canceled wrapped error if the user interrupts the run (Ctrl-C)
//   - ghapi.FetchError kinds for API failures
//   - lineage.ErrNoMergeCommit / lineage.ErrBrokenAncestryChain kinds for graph failures
func RunWithContext(ctx context.Context, cfg Config) error {
	printBanner(cfg.Version)

	if err := setupAndValidate(&cfg); err != nil {
		return err
	}

	logger, closeLog, err := logging.Setup(logging.Options{
		ToStdout: cfg.ToStdout,
		Debug:    cfg.Debug,
		Dir:      cfg.LogDir,
	})
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	// Track start time for duration calculation
	startTime := time.Now()

	status := cfg.Status
	if status == nil {
		status = state.Get()
	}
	recorder := metrics.NewRecorder()

	client, err := ghapi.NewClient(ghapi.Options{
		BaseURL:           cfg.BaseURL,
		Token:             cfg.Token,
		Timeout:           cfg.Timeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		MaxRetries:        cfg.MaxRetries,
		Logger:            logger,
		Metrics:           recorder,
		Status:            status,
	})
	if err != nil {
		return err
	}

	client.UpdateRateLimitInfo(ctx)
	status.PrintRateLimit()
	output.PrintRepoHeader(cfg.Owner, cfg.Repo)

	var (
		result outcome
		tasks  []task
	)
	if cfg.Report {
		tasks = append(tasks, task{name: "report", run: func(ctx context.Context) error {
			rep, err := report.NewAggregator(client, cfg.Owner, cfg.Repo, cfg.ReleasesLimit, logger).Build(ctx)
			if err != nil {
				return err
			}
			result.report = rep
			return nil
		}})
	}
	if cfg.Graph {
		tasks = append(tasks, task{name: "graph", run: func(ctx context.Context) error {
			res, err := resolveBranch(ctx, cfg, client, logger)
			if err != nil {
				return err
			}
			result.lineage = res

			logger.Debug("Building the graph for branch: " + cfg.Branch)
			if err := graph.WriteFile(cfg.OutputFile, graph.Build(res)); err != nil {
				return err
			}
			logger.Info("Graph created successfully check graph .dot file", logger.Args("file", cfg.OutputFile))
			return nil
		}})
	}

	if err := runTasks(ctx, tasks...); err != nil {
		logger.Error("Run failed", logger.Args("error", err.Error()))
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("operation cancelled by user: %w", err)
		}
		return err
	}

	if result.lineage != nil {
		result.files = append(result.files, cfg.OutputFile)
		output.PrintLineage(output.LineageDisplay{
			Trunk:      result.lineage.Trunk,
			Branch:     result.lineage.Branch,
			Merge:      result.lineage.Merge.SHA,
			Base:       result.lineage.Base,
			Commits:    len(result.lineage.Chain),
			Candidates: result.lineage.Candidates,
			OutputFile: cfg.OutputFile,
		})
	}

	if result.report != nil {
		output.PrintReport(reportDisplay(result.report))
		if cfg.ReportFile != "" {
			if err := output.WriteJSON(cfg.ReportFile, result.report); err != nil {
				return err
			}
			result.files = append(result.files, cfg.ReportFile)
		}
	}

	if cfg.MetricsFile != "" {
		if err := recorder.WriteTextfile(cfg.MetricsFile); err != nil {
			pterm.Warning.Printf("Failed to write metrics to %s: %v\n", cfg.MetricsFile, err)
		} else {
			result.files = append(result.files, cfg.MetricsFile)
		}
	}

	rl := status.GetRateLimit()
	output.PrintCompletionSummary(output.CompletionSummary{
		Duration:      time.Since(startTime),
		Mode:          cfg.mode(),
		Files:         result.files,
		RESTCalls:     status.GetAPICalls(),
		Pages:         status.GetPages(),
		RESTLimit:     rl.Limit,
		RESTRemaining: rl.Remaining,
		RESTReset:     rl.Reset,
	})
	status.MarkDone()
	return nil
}

// resolveBranch picks the commit source (local clone or API) and resolves
// the branch lineage.
func resolveBranch(ctx context.Context, cfg Config, client *ghapi.Client, logger *pterm.Logger) (*lineage.Result, error) {
	var src lineage.CommitSource = &lineage.RemoteSource{Client: client, Owner: cfg.Owner, Repo: cfg.Repo}
	if cfg.LocalRepo != "" {
		if _, err := os.Stat(cfg.LocalRepo); err != nil {
			return nil, fmt.Errorf("local repository: %w", err)
		}
		local, err := localgit.Open(cfg.LocalRepo)
		if err != nil {
			return nil, err
		}
		logger.Info("Reading commits from local clone", logger.Args("path", cfg.LocalRepo))
		src = local
	}

	return lineage.NewResolver(src, logger).Resolve(ctx, cfg.Trunk, cfg.Branch)
}

func reportDisplay(r *report.Report) output.ReportDisplay {
	d := output.ReportDisplay{
		Stars:        r.Stars,
		Forks:        r.Forks,
		Contributors: len(r.Contributors),
		PullRequests: r.PullRequests,
	}
	for _, t := range r.PRsByAuthor {
		d.TopAuthors = append(d.TopAuthors, output.ContributorPRs{Login: t.Login, Count: t.Count})
	}
	for _, rel := range r.Releases {
		d.Releases = append(d.Releases, rel.Name)
	}
	return d
}
