package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"github.com/Zuo-Peng/chatstat/internal/stats"
)

// Output formats accepted by WriteReports.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

const (
	colorTitle = "\033[1;36m" // bold cyan
	colorRank  = "\033[2m"
	colorCount = "\033[1m"
)

type ReportOptions struct {
	Top   int  // ranking rows to show, 0 = all
	Color bool // emit ANSI colour codes
}

// ValidFormat reports whether f is a known output format.
func ValidFormat(f string) bool {
	switch f {
	case FormatText, FormatJSON, FormatYAML:
		return true
	}
	return false
}

// WriteReports writes reports to w in the given format.
func WriteReports(w io.Writer, reports []*stats.Report, format string, opts ReportOptions) error {
	limited := make([]*stats.Report, len(reports))
	for i, r := range reports {
		limited[i] = limit(r, opts.Top)
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(limited)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(limited); err != nil {
			return err
		}
		return enc.Close()
	case FormatText, "":
		for i, r := range reports {
			if i > 0 {
				if _, err := io.WriteString(w, "\n"); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, RenderReport(r, opts)); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unknown format: %s", format)
}

// limit returns a copy of r with at most top ranking entries. r itself
// is never modified.
func limit(r *stats.Report, top int) *stats.Report {
	if top <= 0 || r.Kind != stats.KindRanking || len(r.Entries) <= top {
		return r
	}
	cp := *r
	cp.Entries = r.Entries[:top]
	return &cp
}

func paint(on bool, code, s string) string {
	if !on || s == "" {
		return s
	}
	return code + s + colorReset
}

// RenderReport renders a single report as human-readable text.
func RenderReport(r *stats.Report, opts ReportOptions) string {
	var b strings.Builder
	b.WriteString(paint(opts.Color, colorTitle, r.Title))
	b.WriteString("\n")

	switch r.Kind {
	case stats.KindTotal:
		b.WriteString(humanize.Comma(int64(r.Value)))
		b.WriteString(" ")
		b.WriteString(r.Unit)
		if r.HasPercent {
			fmt.Fprintf(&b, " (%.1f%%)", r.Percent)
		}
		b.WriteString("\n")

	case stats.KindRanking:
		shown := limit(r, opts.Top).Entries
		writeEntries(&b, shown, r.Percentages, opts.Color)
		if hidden := len(r.Entries) - len(shown); hidden > 0 {
			fmt.Fprintf(&b, "... %s more\n", humanize.Comma(int64(hidden)))
		}
		writeTotal(&b, r)

	case stats.KindListing:
		if len(r.Entries) == 0 {
			b.WriteString("(none)\n")
		}
		for _, e := range r.Entries {
			fmt.Fprintf(&b, "%s %s  %s\n", paint(opts.Color, colorRank, fmt.Sprintf("%02d.", e.Rank)), e.When, e.Label)
		}
		writeTotal(&b, r)

	case stats.KindMessage:
		m := r.Message
		if m == nil {
			b.WriteString("(no messages)\n")
			break
		}
		fmt.Fprintf(&b, "%s %s (%s letters):\n", m.When, paint(opts.Color, colorCount, m.Sender), humanize.Comma(int64(m.Length)))
		b.WriteString(indentLines(m.Text, "  "))
		b.WriteString("\n")
	}
	return b.String()
}

func writeEntries(b *strings.Builder, entries []stats.Entry, percentages, color bool) {
	if len(entries) == 0 {
		b.WriteString("(none)\n")
		return
	}
	labelW, countW := 0, 0
	counts := make([]string, len(entries))
	for i, e := range entries {
		labelW = max(labelW, runewidth.StringWidth(e.Label))
		counts[i] = humanize.Comma(int64(e.Count))
		countW = max(countW, len(counts[i]))
	}
	for i, e := range entries {
		line := fmt.Sprintf("%s %s  %*s",
			paint(color, colorRank, fmt.Sprintf("%02d.", e.Rank)),
			runewidth.FillRight(e.Label, labelW),
			countW, counts[i],
		)
		if percentages {
			line += fmt.Sprintf("  (%5.1f%%)", e.Percent)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
}

func writeTotal(b *strings.Builder, r *stats.Report) {
	if r.TotalUnit == "" {
		return
	}
	fmt.Fprintf(b, "In total %s %s\n", humanize.Comma(int64(r.Total)), r.TotalUnit)
}
