package config

import (
	"os"
	"path/filepath"
	"testing"
)

func setHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{
		"CHATSTAT_CONFIG", "CHATSTAT_EXPORT_ROOT", "CHATSTAT_DB_PATH",
		"CHATSTAT_FORMAT", "CHATSTAT_COLOR", "CHATSTAT_LOG_LEVEL", "CHATSTAT_TOP",
	} {
		t.Setenv(k, "")
	}
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := setHome(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ExportRoot != filepath.Join(home, "WhatsApp") {
		t.Errorf("ExportRoot = %q", cfg.ExportRoot)
	}
	if cfg.DBPath != filepath.Join(home, ".config", "chatstat", "chatstat.db") {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.Format != "text" || cfg.Color != "auto" || cfg.Top != 0 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	home := setHome(t)
	dir := filepath.Join(home, ".config", "chatstat")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	data := `
export_root = "~/chats"
format = "json"
top = 5
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CHATSTAT_TOP", "10")
	t.Setenv("CHATSTAT_DB_PATH", "~/db/x.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ExportRoot != filepath.Join(home, "chats") {
		t.Errorf("ExportRoot = %q", cfg.ExportRoot)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q", cfg.Format)
	}
	if cfg.Top != 10 {
		t.Errorf("Top = %d, want env override 10", cfg.Top)
	}
	if cfg.DBPath != filepath.Join(home, "db", "x.db") {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "format", key: "CHATSTAT_FORMAT", val: "xml"},
		{name: "color", key: "CHATSTAT_COLOR", val: "sometimes"},
		{name: "top", key: "CHATSTAT_TOP", val: "many"},
		{name: "negative top", key: "CHATSTAT_TOP", val: "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setHome(t)
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%s succeeded", tt.key, tt.val)
			}
		})
	}
}

func TestLoadBadTOML(t *testing.T) {
	home := setHome(t)
	path := filepath.Join(home, "custom.toml")
	if err := os.WriteFile(path, []byte("format = "), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CHATSTAT_CONFIG", path)
	if _, err := Load(); err == nil {
		t.Error("Load() with broken TOML succeeded")
	}
}

func TestExpandHome(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"~/a/b", "/home/u/a/b"},
		{"/abs", "/abs"},
		{"~", "~"},
		{"rel", "rel"},
	}
	for _, tt := range tests {
		if got := expandHome(tt.in, "/home/u"); got != tt.want {
			t.Errorf("expandHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
