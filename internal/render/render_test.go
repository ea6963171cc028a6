package render

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/Zuo-Peng/chatstat/internal/index"
	"github.com/Zuo-Peng/chatstat/internal/stats"
)

func ranking() *stats.Report {
	return &stats.Report{
		Key:   "user-ranking",
		Title: "User ranking",
		Kind:  stats.KindRanking,
		Entries: []stats.Entry{
			{Rank: 1, Label: "Alice", Count: 1200},
			{Rank: 2, Label: "Bob", Count: 3},
			{Rank: 3, Label: "Jörg", Count: 1},
		},
	}
}

func TestRenderReportTotal(t *testing.T) {
	r := &stats.Report{Title: "Days without messages", Kind: stats.KindTotal, Value: 2, Unit: "of 3 days without messages", Percent: 200.0 / 3, HasPercent: true}
	got := RenderReport(r, ReportOptions{})
	want := "Days without messages\n2 of 3 days without messages (66.7%)\n"
	if got != want {
		t.Errorf("RenderReport() = %q, want %q", got, want)
	}
}

func TestRenderReportRanking(t *testing.T) {
	got := RenderReport(ranking(), ReportOptions{})
	want := "User ranking\n" +
		"01. Alice  1,200\n" +
		"02. Bob        3\n" +
		"03. Jörg       1\n"
	if got != want {
		t.Errorf("RenderReport() =\n%s\nwant\n%s", got, want)
	}

	got = RenderReport(ranking(), ReportOptions{Top: 1})
	want = "User ranking\n01. Alice  1,200\n... 2 more\n"
	if got != want {
		t.Errorf("RenderReport(top 1) =\n%s\nwant\n%s", got, want)
	}

	if got := RenderReport(ranking(), ReportOptions{Color: true}); !strings.Contains(got, colorTitle) {
		t.Errorf("coloured output has no title colour: %q", got)
	}
}

func TestRenderReportPercentagesAndTotal(t *testing.T) {
	r := &stats.Report{
		Title:       "First digit distribution",
		Kind:        stats.KindRanking,
		Entries:     []stats.Entry{{Rank: 1, Label: "digit 1", Count: 2, Percent: 50}},
		Percentages: true,
		Total:       4,
		TotalUnit:   "numbers",
	}
	got := RenderReport(r, ReportOptions{})
	want := "First digit distribution\n01. digit 1  2  ( 50.0%)\nIn total 4 numbers\n"
	if got != want {
		t.Errorf("RenderReport() = %q, want %q", got, want)
	}
}

func TestRenderReportEmpty(t *testing.T) {
	r := &stats.Report{Title: "Most hashtags", Kind: stats.KindRanking, TotalUnit: "hashtags"}
	if got, want := RenderReport(r, ReportOptions{}), "Most hashtags\n(none)\nIn total 0 hashtags\n"; got != want {
		t.Errorf("RenderReport() = %q, want %q", got, want)
	}
	m := &stats.Report{Title: "Longest message", Kind: stats.KindMessage}
	if got, want := RenderReport(m, ReportOptions{}), "Longest message\n(no messages)\n"; got != want {
		t.Errorf("RenderReport() = %q, want %q", got, want)
	}
}

func TestRenderReportMessageAndListing(t *testing.T) {
	m := &stats.Report{Title: "Longest message", Kind: stats.KindMessage,
		Message: &stats.MessageRef{When: "01.01.20, 10:00", Sender: "Alice", Text: "a\nb", Length: 3}}
	if got, want := RenderReport(m, ReportOptions{}), "Longest message\n01.01.20, 10:00 Alice (3 letters):\n  a\n  b\n"; got != want {
		t.Errorf("RenderReport() = %q, want %q", got, want)
	}

	l := &stats.Report{Title: "System events", Kind: stats.KindListing,
		Entries: []stats.Entry{{Rank: 1, Label: "Bob hat Carol hinzugefügt", When: "01.01.20, 10:06"}},
		Total:   1, TotalUnit: "system events"}
	want := "System events\n01. 01.01.20, 10:06  Bob hat Carol hinzugefügt\nIn total 1 system events\n"
	if got := RenderReport(l, ReportOptions{}); got != want {
		t.Errorf("RenderReport() = %q, want %q", got, want)
	}
}

func TestWriteReportsStructured(t *testing.T) {
	reports := []*stats.Report{ranking()}

	var buf bytes.Buffer
	if err := WriteReports(&buf, reports, FormatJSON, ReportOptions{Top: 2}); err != nil {
		t.Fatal(err)
	}
	var decoded []stats.Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("json: %v\n%s", err, buf.String())
	}
	if len(decoded) != 1 || decoded[0].Key != "user-ranking" || len(decoded[0].Entries) != 2 {
		t.Errorf("json decoded = %+v", decoded)
	}
	if len(reports[0].Entries) != 3 {
		t.Error("top limit modified the report")
	}

	buf.Reset()
	if err := WriteReports(&buf, reports, FormatYAML, ReportOptions{}); err != nil {
		t.Fatal(err)
	}
	var generic []map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &generic); err != nil {
		t.Fatalf("yaml: %v\n%s", err, buf.String())
	}
	if len(generic) != 1 || generic[0]["key"] != "user-ranking" {
		t.Errorf("yaml decoded = %v", generic)
	}

	if err := WriteReports(&buf, reports, "xml", ReportOptions{}); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestWrapLine(t *testing.T) {
	tests := []struct {
		line  string
		width int
		want  []string
	}{
		{"abcdef", 0, []string{"abcdef"}},
		{"abcdef", 4, []string{"abcd", "ef"}},
		{"", 4, []string{""}},
		{"日本語", 4, []string{"日本", "語"}},
		{colorDim + "abcd" + colorReset + "ef", 4, []string{colorDim + "abcd" + colorReset, "ef"}},
	}
	for _, tt := range tests {
		got := wrapLine(tt.line, tt.width)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("wrapLine(%q, %d) = %q, want %q", tt.line, tt.width, got, tt.want)
		}
	}
}

func TestHighlightKeywords(t *testing.T) {
	got := highlightKeywords("Pizza und pizza", "pizza AND")
	want := colorBoldRed + "Pizza" + colorReset + " und " + colorBoldRed + "pizza" + colorReset
	if got != want {
		t.Errorf("highlightKeywords() = %q, want %q", got, want)
	}
	if got := highlightKeywords("text", ""); got != "text" {
		t.Errorf("highlightKeywords(no query) = %q", got)
	}
}

func TestRenderConversation(t *testing.T) {
	db, err := index.OpenDB(filepath.Join(t.TempDir(), "chatstat.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	root := t.TempDir()
	export := "01.01.20, 10:00 - Alice: Hallo\n" +
		"01.01.20, 10:05 - Bob: <Medien weggelassen>\n" +
		"01.01.20, 10:06 - Bob hat Carol hinzugefügt\n" +
		"02.01.20, 08:00 - Carol: Pizza heute?\n"
	if err := os.WriteFile(filepath.Join(root, "WhatsApp Chat mit Gruppe.txt"), []byte(export), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := index.IndexAll(db, root); err != nil {
		t.Fatal(err)
	}

	out, hitLine, err := RenderConversation(db, "WhatsApp Chat mit Gruppe", Options{HitMsgID: 3, Context: 1, NoColor: true, Query: "pizza"})
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(out, "\n")
	if hitLine < 0 || hitLine >= len(lines) || !strings.HasPrefix(lines[hitLine], ">> Carol > 2020-01-02T08:00") {
		t.Errorf("hit line %d in\n%s", hitLine, out)
	}
	for _, want := range []string{"--- Gruppe", "... (2 messages before) ...", "* Bob hat Carol hinzugefügt", "  Pizza heute?"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Errorf("NoColor output has escape codes: %q", out)
	}

	if _, _, err := RenderConversation(db, "missing", Options{}); err == nil {
		t.Error("RenderConversation(missing) error = nil")
	}
}
