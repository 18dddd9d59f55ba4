package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfigDirFor(t *testing.T) {
	tests := []struct {
		description string
		goos        string
		env         map[string]string
		expected    string
	}{
		{"linux default", "linux", nil, "/home/u/.config/wordhunt"},
		{"linux xdg", "linux", map[string]string{"XDG_CONFIG_HOME": "/xdg"}, "/xdg/wordhunt"},
		{"darwin", "darwin", nil, "/home/u/.config/wordhunt"},
		{"windows appdata", "windows", map[string]string{"APPDATA": "/appdata"}, "/appdata/wordhunt"},
		{"windows fallback", "windows", nil, "/home/u/AppData/Roaming/wordhunt"},
		{"other", "plan9", nil, "/home/u/.wordhunt"},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			getenv := func(k string) string { return tt.env[k] }
			got := configDirFor("/home/u", tt.goos, getenv)
			if got != filepath.FromSlash(tt.expected) {
				t.Errorf("configDirFor() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestDictDir(t *testing.T) {
	root := t.TempDir()
	execDir := filepath.Join(root, "bin")
	data := filepath.Join(root, "data")
	if err := os.MkdirAll(execDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(data, 0o755); err != nil {
		t.Fatal(err)
	}
	pr := newPathResolver(execDir, root, "linux", func(string) string { return filepath.Join(root, "cfg") })

	if _, ok := pr.DictDir(""); ok {
		t.Fatal("expected no dictionary dir without chunks")
	}
	if err := os.WriteFile(filepath.Join(data, "dict_0001.bin"), []byte{0, 0, 0, 0}, 0o644); err != nil {
		t.Fatal(err)
	}
	dir, ok := pr.DictDir("")
	if !ok || dir != data {
		t.Errorf("DictDir() = %q, %v; expected %q (parent data dir)", dir, ok, data)
	}
	dir, ok = pr.DictDir(data)
	if !ok || dir != data {
		t.Errorf("DictDir(abs) = %q, %v", dir, ok)
	}
}

func TestRuntimeInfo(t *testing.T) {
	root := t.TempDir()
	execDir := filepath.Join(root, "bin")
	data := filepath.Join(execDir, "data")
	if err := os.MkdirAll(data, 0o755); err != nil {
		t.Fatal(err)
	}
	env := map[string]string{"XDG_CONFIG_HOME": filepath.Join(root, "xdg")}
	pr := newPathResolver(execDir, root, "linux", func(k string) string { return env[k] })

	info := pr.RuntimeInfo()
	if info.ExecutableDir != execDir || info.HomeDir != root || info.OS != "linux" {
		t.Errorf("info = %+v", info)
	}
	if info.ConfigDir != filepath.Join(root, "xdg", AppDir) || info.XDGConfigHome != env["XDG_CONFIG_HOME"] {
		t.Errorf("config dir = %q, xdg = %q", info.ConfigDir, info.XDGConfigHome)
	}
	if info.DictDir != "" || info.AppData != "" || info.WorkingDir == "" {
		t.Errorf("info = %+v", info)
	}
	if n := len(info.KeyVals()); n != 10 {
		t.Errorf("KeyVals() has %d entries, expected 10", n)
	}

	if err := os.WriteFile(filepath.Join(data, "dict_0001.bin"), []byte{0, 0, 0, 0}, 0o644); err != nil {
		t.Fatal(err)
	}
	if got := pr.RuntimeInfo().DictDir; got != data {
		t.Errorf("DictDir = %q, expected %q", got, data)
	}
}

func TestTOMLRecoveryHelpers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.toml")
	content := `
[search]
timeout = "90s"
ratio = 1
name = "x"
debug = true

[[crawler.sources]]
url = "https://a"

[[crawler.sources]]
url = "https://b"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	raw, err := ParseTOMLWithRecovery(path)
	if err != nil {
		t.Fatal(err)
	}
	search, ok := ExtractSection(raw, "search")
	if !ok {
		t.Fatal("missing search section")
	}
	if d, ok := ExtractDuration(search, "timeout"); !ok || d != 90*time.Second {
		t.Errorf("ExtractDuration = %v, %v", d, ok)
	}
	if f, ok := ExtractFloat(search, "ratio"); !ok || f != 1 {
		t.Errorf("ExtractFloat on integer = %v, %v", f, ok)
	}
	if s, ok := ExtractString(search, "name"); !ok || s != "x" {
		t.Errorf("ExtractString = %q, %v", s, ok)
	}
	if b, ok := ExtractBool(search, "debug"); !ok || !b {
		t.Errorf("ExtractBool = %v, %v", b, ok)
	}
	if _, ok := ExtractInt64(search, "name"); ok {
		t.Error("ExtractInt64 accepted a string")
	}

	crawler, _ := ExtractSection(raw, "crawler")
	sources, ok := ExtractTables(crawler, "sources")
	if !ok || len(sources) != 2 {
		t.Fatalf("ExtractTables = %v, %v", sources, ok)
	}
	if u, _ := ExtractString(sources[1], "url"); u != "https://b" {
		t.Errorf("second source = %q", u)
	}
}

func TestSaveTOMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.toml")
	in := struct {
		Name string `toml:"name"`
	}{"wordhunt"}
	if err := SaveTOMLFile(in, path); err != nil {
		t.Fatal(err)
	}
	var out struct {
		Name string `toml:"name"`
	}
	if err := LoadTOMLFile(path, &out); err != nil {
		t.Fatal(err)
	}
	if out.Name != "wordhunt" {
		t.Errorf("round trip name = %q", out.Name)
	}
	if !FileExists(path) {
		t.Error("FileExists = false")
	}
}
