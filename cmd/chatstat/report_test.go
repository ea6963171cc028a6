package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Zuo-Peng/chatstat/internal/parse"
)

const export = `01.01.20, 10:00 - Alice: Hallo #urlaub
01.01.20, 10:05 - Bob: <Medien weggelassen>
01.01.20, 10:06 - Bob hat Carol hinzugefügt
02.01.20, 08:00 - Alice: Pizza?
`

func setupEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("CHATSTAT_CONFIG", filepath.Join(home, "none.toml"))
	t.Setenv("CHATSTAT_COLOR", "never")
	t.Setenv("CHATSTAT_DB_PATH", filepath.Join(home, "chatstat.db"))

	path := filepath.Join(home, "WhatsApp Chat mit Alice.txt")
	if err := os.WriteFile(path, []byte(export), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runReport(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := reportCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestReportText(t *testing.T) {
	path := setupEnv(t)
	out, err := runReport(t, "-M", "-u", path)
	if err != nil {
		t.Fatalf("report error = %v", err)
	}
	want := "Total messages\n3 total messages\n\nUser ranking (most total messages)\n01. Alice  2\n02. Bob    1\n"
	if out != want {
		t.Errorf("report output =\n%q\nwant\n%q", out, want)
	}
}

func TestReportJSONAll(t *testing.T) {
	path := setupEnv(t)
	out, err := runReport(t, "--all", "--format", "json", path)
	if err != nil {
		t.Fatalf("report error = %v", err)
	}
	var reports []map[string]any
	if err := json.Unmarshal([]byte(out), &reports); err != nil {
		t.Fatalf("json: %v", err)
	}
	// every report except the phrase ranking
	if got, want := len(reports), 19; got != want {
		t.Errorf("len(reports) = %d, want %d", got, want)
	}
}

func TestReportErrors(t *testing.T) {
	path := setupEnv(t)

	if _, err := runReport(t, path); err == nil || !strings.Contains(err.Error(), "no report selected") {
		t.Errorf("no selection error = %v", err)
	}

	bad := filepath.Join(filepath.Dir(path), "bad.txt")
	if err := os.WriteFile(bad, []byte("01.13.20, 10:00 - Alice: hi\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := runReport(t, "-M", bad)
	var le *parse.LineError
	if !errors.Is(err, parse.ErrInvalidTimestamp) || !errors.As(err, &le) || le.Line != 1 {
		t.Errorf("bad export error = %v", err)
	}

	if _, err := runReport(t, "-M", filepath.Join(filepath.Dir(path), "missing.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v", err)
	}

	if _, err := runReport(t, "-M", "--format", "xml", path); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestUseColor(t *testing.T) {
	if !useColor("always") || useColor("never") {
		t.Error("explicit colour modes ignored")
	}
}
