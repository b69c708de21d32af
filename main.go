// insights extracts GitHub repository metadata (stars, forks, contributors,
// pull requests, latest releases) and reconstructs the commit history of a
// feature branch merged into the trunk as a Graphviz DOT graph.
//
// Usage:
//
//	insights run <token> <owner> <repo> --branch feature
//	insights report <owner> <repo> --report-file report.json
//	insights graph <owner> <repo> --branch feature --local-repo ./clone
package main

import (
	"github.com/OzBlumenfeld/GitHub-repo-insights/cmd"
)

// Version is the current version of insights.
// It can be overridden at build time using:
//
//	go build -ldflags="-X main.Version=v1.0.0"
var Version = "dev"

func main() {
	// Set version in cmd package so it can be accessed by subcommands
	cmd.Version = Version
	cmd.Execute()
}
