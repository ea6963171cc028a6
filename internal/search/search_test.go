package search

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Zuo-Peng/chatstat/internal/index"
)

const export = `01.01.20, 10:00 - Alice: Hallo zusammen
01.01.20, 10:05 - Bob: <Medien weggelassen>
02.01.20, 08:00 - Carol: Pizza heute?
02.01.20, 08:01 - Alice: Gerne, Pizza klingt gut
04.02.21, 10:00 - Li: 你好世界
`

func setup(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.OpenDB(filepath.Join(t.TempDir(), "chatstat.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "WhatsApp Chat mit Gruppe.txt"), []byte(export), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := index.IndexAll(db, root); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestSearch(t *testing.T) {
	db := setup(t)

	tests := []struct {
		name string
		opts Options
		want int
	}{
		{name: "fts", opts: Options{Query: "pizza"}, want: 2},
		{name: "sender", opts: Options{Query: "pizza", Sender: "Alice"}, want: 1},
		{name: "since", opts: Options{Query: "pizza", Since: "2020-01-02"}, want: 2},
		{name: "since excludes", opts: Options{Query: "pizza", Since: "2020-01-03"}, want: 0},
		{name: "chat", opts: Options{Query: "pizza", Chat: "other"}, want: 0},
		{name: "cjk", opts: Options{Query: "你好"}, want: 1},
		{name: "limit", opts: Options{Query: "pizza", Limit: 1}, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := Search(db, tt.opts)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if len(results) != tt.want {
				t.Fatalf("Search() = %d results, want %d: %+v", len(results), tt.want, results)
			}
			for _, r := range results {
				if r.ChatName != "Gruppe" || r.ChatKey != "WhatsApp Chat mit Gruppe" {
					t.Errorf("result chat = %q/%q", r.ChatKey, r.ChatName)
				}
				if !strings.Contains(r.Snippet, ">>>") {
					t.Errorf("snippet %q has no marker", r.Snippet)
				}
			}
		})
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	db := setup(t)
	if _, err := Search(db, Options{Query: "  "}); err == nil {
		t.Error("Search(blank) error = nil")
	}
}

func TestMakeSnippet(t *testing.T) {
	tests := []struct {
		text, query string
		ctx         int
		want        string
	}{
		{"Gerne, Pizza klingt gut", "pizza", 3, "...e, >>>Pizza<<< kl..."},
		{"你好世界", "你好", 5, ">>>你好<<<世界"},
		{"abcdefgh", "zz", 2, "abcd..."},
		{"abc", "zz", 2, "abc"},
	}
	for _, tt := range tests {
		if got := makeSnippet(tt.text, tt.query, tt.ctx); got != tt.want {
			t.Errorf("makeSnippet(%q, %q) = %q, want %q", tt.text, tt.query, got, tt.want)
		}
	}
}

func TestListAll(t *testing.T) {
	db := setup(t)

	results, err := ListAll(db, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("ListAll() = %+v", results)
	}
	r := results[0]
	if r.MsgID != 4 || r.Sender != "Li" || r.Ts != "2021-02-04T10:00" || r.Snippet != "你好世界" {
		t.Errorf("ListAll()[0] = %+v", r)
	}

	results, err = ListAll(db, Options{Since: "2022-01-01"})
	if err != nil || len(results) != 0 {
		t.Errorf("ListAll(since) = %+v, %v", results, err)
	}
}
