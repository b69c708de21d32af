// Package output provides formatting and display utilities for terminal output.
//
// This file (formatting.go) contains functions for displaying the repository
// report, the resolved branch lineage and the completion summary in a
// consistent format using pterm.
package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"
)

const separator = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// PrintSectionHeader prints a prominent section header with separator.
func PrintSectionHeader(title string) {
	pterm.Println()
	pterm.DefaultSection.Println(title)
}

// PrintRepoHeader prints the repository header with styling.
func PrintRepoHeader(owner, repo string) {
	pterm.Println()
	pterm.Info.Println(separator)
	pterm.Info.Printf("📦 Repository: %s/%s\n", owner, repo)
	pterm.Info.Println(separator)
	pterm.Println()
}

// ContributorPRs is one row of the pull request tally.
type ContributorPRs struct {
	Login string
	Count int
}

// ReportDisplay holds the repository report for display.
type ReportDisplay struct {
	Stars        int
	Forks        int
	Contributors int
	PullRequests int
	TopAuthors   []ContributorPRs
	Releases     []string
}

// maxAuthorsShown bounds the tally printed to the terminal; the JSON report
// carries all of it.
const maxAuthorsShown = 10

// PrintReport prints the repository report in a tree format.
func PrintReport(r ReportDisplay) {
	PrintSectionHeader("📊 Repository Report")
	pterm.Info.Printf("   ├─ ⭐ Stars: %s | Forks: %s\n", FormatNumber(int64(r.Stars)), FormatNumber(int64(r.Forks)))
	pterm.Info.Printf("   ├─ 👥 Contributors: %s\n", FormatNumber(int64(r.Contributors)))
	pterm.Info.Printf("   ├─ 🔀 Pull requests: %s\n", FormatNumber(int64(r.PullRequests)))

	if len(r.Releases) > 0 {
		pterm.Info.Printf("   ├─ 🏷️  Latest releases: %s\n", strings.Join(r.Releases, ", "))
	}

	if len(r.TopAuthors) == 0 {
		pterm.Info.Println("   └─ No pull requests by contributors")
	} else {
		pterm.Info.Println("   └─ Pull requests by contributor")
		shown := r.TopAuthors
		if len(shown) > maxAuthorsShown {
			shown = shown[:maxAuthorsShown]
		}
		for i, a := range shown {
			branch := "├─"
			if i == len(shown)-1 {
				branch = "└─"
			}
			pterm.Info.Printf("      %s %s: %d\n", branch, a.Login, a.Count)
		}
	}

	pterm.Println()
	pterm.Success.Println("✅ Repository report complete")
}

// LineageDisplay holds a resolved branch lineage for display.
type LineageDisplay struct {
	Trunk      string
	Branch     string
	Merge      string
	Base       string
	Commits    int
	Candidates int
	OutputFile string
}

// PrintLineage prints the resolved branch lineage.
func PrintLineage(l LineageDisplay) {
	PrintSectionHeader(fmt.Sprintf("🌿 Branch %s merged into %s", l.Branch, l.Trunk))
	pterm.Info.Printf("   ├─ Merge commit: %s\n", ShortSHA(l.Merge))
	pterm.Info.Printf("   ├─ Base commit: %s\n", ShortSHA(l.Base))
	pterm.Info.Printf("   ├─ Branch commits: %d\n", l.Commits)
	if l.Candidates > 1 {
		pterm.Warning.Printf("   ├─ %d merge commits qualified, the oldest was used\n", l.Candidates)
	}
	pterm.Info.Printf("   └─ Graph file: %s\n", l.OutputFile)

	pterm.Println()
	pterm.Success.Println("✅ Branch graph written")
}

// CompletionSummary holds the final summary information.
type CompletionSummary struct {
	Duration      time.Duration
	Mode          string
	Files         []string
	RESTCalls     int64
	Pages         int64
	RESTLimit     int64
	RESTRemaining int64
	RESTReset     time.Time
}

// PrintCompletionSummary prints the final completion summary.
func PrintCompletionSummary(summary CompletionSummary) {
	pterm.Println()
	pterm.Success.Println(separator)
	pterm.Success.Println("✨ Extraction Complete!")
	pterm.Success.Println(separator)
	pterm.Println()

	pterm.Info.Println("📈 Summary")
	pterm.Info.Printf("   ├─ Duration: %s\n", FormatDuration(summary.Duration))
	if len(summary.Files) > 0 {
		pterm.Info.Printf("   ├─ Output files: %s\n", strings.Join(summary.Files, ", "))
	}
	pterm.Info.Printf("   └─ Mode: %s\n", summary.Mode)
	pterm.Println()

	pterm.Info.Println("🌐 API Usage")
	if summary.RESTLimit > 0 {
		pterm.Info.Printf("   ├─ REST: %d calls, %d pages (%s remaining of %s)\n",
			summary.RESTCalls,
			summary.Pages,
			FormatNumber(summary.RESTRemaining),
			FormatNumber(summary.RESTLimit))
		pterm.Info.Printf("   └─ Resets: %s (in %s)\n",
			summary.RESTReset.Format("15:04:05"),
			FormatTimeUntil(summary.RESTReset))
	} else {
		pterm.Info.Printf("   └─ REST: %d calls, %d pages\n", summary.RESTCalls, summary.Pages)
	}
	pterm.Println()
}

// Helper functions

// ShortSHA returns the first seven characters of a commit identifier.
func ShortSHA(sha string) string {
	if len(sha) <= 7 {
		return sha
	}
	return sha[:7]
}

// FormatDuration formats a duration in a human-readable way (e.g., "5m30s", "2h15m").
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		minutes := int(d.Minutes())
		seconds := int(d.Seconds()) % 60
		if seconds == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	if minutes == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh%dm", hours, minutes)
}

// FormatNumber formats a number with thousand separators (e.g., "1,234,567").
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var result []byte
	for i, digit := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(digit))
	}
	return string(result)
}

// FormatTimeUntil formats the time until a future time in a human-readable way (e.g., "5m", "2h15m").
func FormatTimeUntil(t time.Time) string {
	d := time.Until(t)
	if d < 0 {
		return "now"
	}

	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	if minutes == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh%dm", hours, minutes)
}
