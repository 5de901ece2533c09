// Package report renders batch results as markdown and HTML.
package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/dgallion1/libgest/internal/library"
	"github.com/dgallion1/libgest/internal/pipeline"
)

// maxListedFailures bounds the failure list in summaries.
const maxListedFailures = 5

// FailureSummary numbers the first five failures and counts the rest.
func FailureSummary(failures []string) string {
	if len(failures) == 0 {
		return ""
	}
	shown := failures
	if len(shown) > maxListedFailures {
		shown = shown[:maxListedFailures]
	}
	lines := make([]string, 0, len(shown)+1)
	for i, f := range shown {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, f))
	}
	if rest := len(failures) - len(shown); rest > 0 {
		lines = append(lines, fmt.Sprintf("...and %d more", rest))
	}
	return strings.Join(lines, "\n")
}

// Markdown renders a job's result.
func Markdown(snap pipeline.JobSnapshot, components []*library.Component) string {
	var b strings.Builder

	title := snap.Name
	if title == "" {
		title = snap.ID
	}
	fmt.Fprintf(&b, "# Batch %s\n\n", escape(title))
	fmt.Fprintf(&b, "- Job: `%s`\n", snap.ID)
	fmt.Fprintf(&b, "- Status: **%s**\n", snap.Status)
	fmt.Fprintf(&b, "- Devices: %d (exported %d, failed %d)\n",
		snap.Progress.TotalDevices, snap.Progress.Exported, len(snap.Progress.Errors))

	if len(components) > 0 {
		b.WriteString("\n## Components\n\n")
		b.WriteString("| Symbol | Footprint | Prefix | LCSC | Pins | Pads |\n")
		b.WriteString("|---|---|---|---|---|---|\n")
		for _, c := range components {
			pins, pads := 0, 0
			if c.Symbol != nil {
				pins = len(c.Symbol.Pins)
			}
			if c.Footprint != nil {
				pads = len(c.Footprint.Pads)
			}
			lcsc := c.LCSC
			if lcsc == "" {
				lcsc = "-"
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
				escape(c.Name), escape(c.FootprintName), c.Prefix, lcsc, strconv.Itoa(pins), strconv.Itoa(pads))
		}
	}

	if summary := FailureSummary(snap.Progress.Errors); summary != "" {
		b.WriteString("\n## Failures\n\n")
		b.WriteString(escape(summary))
		b.WriteString("\n")
	}
	return b.String()
}

// HTML converts markdown to an HTML fragment.
func HTML(markdown string) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return buf.String(), nil
}

var mdEscaper = strings.NewReplacer("|", `\|`, "*", `\*`, "<", "&lt;", ">", "&gt;")

func escape(s string) string {
	return mdEscaper.Replace(s)
}
