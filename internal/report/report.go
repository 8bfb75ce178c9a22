// Package report renders sync run summaries as markdown and HTML.
package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/TobiSchelling/legisync/internal/database"
	"github.com/TobiSchelling/legisync/internal/sync"
)

var md = goldmark.New()

// Compose renders the run's per-job outcomes and current store totals as
// a markdown document.
func Compose(summary *sync.RunSummary, stats *database.Stats, ranAt time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Sync Run %s\n\n", summary.RunID)
	fmt.Fprintf(&b, "Ran at %s.\n\n", ranAt.Format("2006-01-02 15:04:05 MST"))

	b.WriteString("## Jobs\n\n")
	b.WriteString("| Entity | Inserted | Updated | Skipped | Outcome |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, r := range summary.Results {
		outcome := "ok"
		if r.Err != nil {
			outcome = "failed: " + r.Err.Error()
		}
		fmt.Fprintf(&b, "| %s | %d | %d | %d | %s |\n",
			r.Entity, r.Inserted, r.Updated, r.Skipped, outcome)
	}
	b.WriteString("\n")

	var skips []string
	for _, r := range summary.Results {
		reasons := make([]string, 0, len(r.SkipReasons))
		for reason := range r.SkipReasons {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			skips = append(skips, fmt.Sprintf("- %s: %s × %d", r.Entity, reason, r.SkipReasons[reason]))
		}
	}
	if len(skips) > 0 {
		b.WriteString("## Skip Reasons\n\n")
		b.WriteString(strings.Join(skips, "\n"))
		b.WriteString("\n\n")
	}

	if stats != nil {
		b.WriteString("## Store Totals\n\n")
		fmt.Fprintf(&b, "- Politicians: %d\n", stats.Politicians)
		fmt.Fprintf(&b, "- Bills: %d\n", stats.Bills)
		fmt.Fprintf(&b, "- Cosponsorships: %d\n", stats.Cosponsors)
		fmt.Fprintf(&b, "- Votes: %d\n", stats.Votes)
		fmt.Fprintf(&b, "- Committees: %d\n", stats.Committees)
		fmt.Fprintf(&b, "- Assignments: %d\n", stats.Assignments)
		fmt.Fprintf(&b, "- Donors: %d\n", stats.Donors)
		fmt.Fprintf(&b, "- Donations: %d\n", stats.Donations)
	}

	return b.String()
}

// WriteHTML converts a markdown report to HTML and writes it under dir,
// returning the file path.
func WriteHTML(markdown, dir, runID string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report dir: %w", err)
	}

	var body bytes.Buffer
	if err := md.Convert([]byte(markdown), &body); err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	page.WriteString("<title>legisync run report</title>\n</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")

	path := filepath.Join(dir, fmt.Sprintf("run-%s.html", runID))
	if err := os.WriteFile(path, page.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}
