package logger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"go.uber.org/zap"
)

// readEntries parses a JSON-lines log file.
func readEntries(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()

	var entries []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e map[string]any
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("line %q is not JSON: %v", sc.Text(), err)
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan log: %v", err)
	}
	return entries
}

// keepGlobal restores the process-wide logger when the test ends.
func keepGlobal(t *testing.T) {
	log, sugar := Log, Sugar
	t.Cleanup(func() { Log, Sugar = log, sugar })
}

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		level string
		want  []string
	}{
		{"error", []string{"ERROR"}},
		{"warn", []string{"WARN", "ERROR"}},
		{"info", []string{"INFO", "WARN", "ERROR"}},
		{"debug", []string{"DEBUG", "INFO", "WARN", "ERROR"}},
		{"verbose", []string{"INFO", "WARN", "ERROR"}},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "avatargen.log")
			l := New(tt.level, FileConfig{Path: path, MaxSizeMB: 1, JSON: true}, false)

			l.Debug("landmarks normalized", zap.Int("count", 468))
			l.Info("mesh built", zap.Int("vertices", 468))
			l.Warn("texture dropped", zap.String("reason", "decode failed"))
			l.Error("avatar failed", zap.String("stage", "glb-serializer"))
			_ = l.Sync()

			var got []string
			for _, e := range readEntries(t, path) {
				got = append(got, fmt.Sprint(e["level"]))
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("levels = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJSONEntryFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "avatargen.log")
	l := New("info", FileConfig{Path: path, MaxSizeMB: 1, JSON: true}, false)

	l.Named("batch").Info("avatar generated",
		zap.String("input", "alice.json"),
		zap.Int("bytes", 20480),
	)
	_ = l.Sync()

	entries := readEntries(t, path)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	want := map[string]any{
		"logger": "batch",
		"msg":    "avatar generated",
		"input":  "alice.json",
		"bytes":  float64(20480),
	}
	for k, v := range want {
		if e[k] != v {
			t.Errorf("%s = %v, want %v", k, e[k], v)
		}
	}
	for _, k := range []string{"time", "caller"} {
		if _, ok := e[k]; !ok {
			t.Errorf("entry has no %q key: %v", k, e)
		}
	}
}

func TestRotationKeepsBackups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "avatargen.log")
	l := New("info", FileConfig{Path: path, MaxSizeMB: 1, MaxBackups: 2, JSON: true}, false)

	// Roughly 600 bytes per entry, enough for at least one rollover.
	material := strings.Repeat("m", 512)
	for i := 0; i < 4000; i++ {
		l.Info("avatar generated",
			zap.String("id", fmt.Sprintf("avatar-%04d", i)),
			zap.String("material", material),
		)
	}
	_ = l.Sync()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("current log: %v", err)
	}
	backups, err := filepath.Glob(filepath.Join(dir, "avatargen-*.log"))
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) == 0 {
		t.Fatal("no rotated log files")
	}
	for _, b := range backups {
		// lumberjack stamps backups as name-YYYY-MM-DDTHH-MM-SS.mmm.log
		if !strings.Contains(filepath.Base(b), "-20") {
			t.Errorf("backup %s has no timestamp", b)
		}
	}
}

func TestInitWithFileConfigSetsGlobal(t *testing.T) {
	keepGlobal(t)
	path := filepath.Join(t.TempDir(), "avatargen.log")
	if err := InitWithFileConfig("info", FileConfig{Path: path, MaxSizeMB: 1}, false); err != nil {
		t.Fatalf("InitWithFileConfig: %v", err)
	}

	Named("pipeline").Info("avatar generated", zap.String("id", "avatar-0001"))
	Debug("below level")
	Sync()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), content)
	}
	for _, s := range []string{"INFO", "pipeline", "avatar generated", "avatar-0001"} {
		if !strings.Contains(lines[0], s) {
			t.Errorf("line %q missing %q", lines[0], s)
		}
	}
}

func TestNewLeavesGlobalAlone(t *testing.T) {
	keepGlobal(t)
	before := Log
	l := New("debug", FileConfig{}, false)
	if l == nil {
		t.Fatal("New returned nil")
	}
	if Log != before {
		t.Error("New replaced the process-wide logger")
	}
	// No cores: entries are discarded.
	l.Info("avatar generated")
}

func TestDefaultFileConfig(t *testing.T) {
	got := DefaultFileConfig("logs/avatargen.log")
	want := FileConfig{
		Path:       "logs/avatargen.log",
		MaxSizeMB:  50,
		MaxBackups: 3,
		MaxAgeDays: 7,
		Compress:   true,
	}
	if got != want {
		t.Errorf("DefaultFileConfig = %+v, want %+v", got, want)
	}
}
