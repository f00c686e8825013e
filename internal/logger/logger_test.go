package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// initFile logs to a fresh file only and returns a reader for its content.
func initFile(t *testing.T, level string) func() string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "objconv.log")
	cfg := DefaultFileConfig(path)
	cfg.Compress = false
	if err := InitWithFileConfig(level, cfg, false); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	t.Cleanup(InitNop)
	return func() string {
		Sync()
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}
		return string(data)
	}
}

func TestInitWithFileConfig_Levels(t *testing.T) {
	all := []string{"DEBUG", "INFO", "WARN", "ERROR"}
	tests := []struct {
		level string
		first int // index into all of the lowest level written
	}{
		{"debug", 0},
		{"info", 1},
		{"warn", 2},
		{"error", 3},
		{"loud", 1}, // unknown levels fall back to info
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			read := initFile(t, tt.level)
			Debug("generating normals")
			Info("converted")
			Warn("face skipped")
			Error("write failed")

			content := read()
			for i, lvl := range all {
				if got := strings.Contains(content, lvl); got != (i >= tt.first) {
					t.Errorf("level %s present = %v in:\n%s", lvl, got, content)
				}
			}
		})
	}
}

func TestInitWithFileConfig_NoOutput(t *testing.T) {
	if err := InitWithFileConfig("info", FileConfig{}, false); err == nil {
		t.Error("expected an error without console or file output")
	}
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("out/objconv.log")
	want := FileConfig{Path: "out/objconv.log", MaxSizeMB: 20, MaxBackups: 3, MaxAgeDays: 14, Compress: true}
	if cfg != want {
		t.Errorf("DefaultFileConfig = %+v, want %+v", cfg, want)
	}
}

func TestProgress_RateLimited(t *testing.T) {
	InitNop()

	clock := time.Unix(1000, 0)
	p := newProgress("deduplicating", 10, func() time.Time { return clock })

	if p.Update(1) {
		t.Error("expected no report before the interval elapsed")
	}
	clock = clock.Add(ProgressInterval)
	if !p.Update(2) {
		t.Error("expected a report once the interval elapsed")
	}
	clock = clock.Add(time.Second)
	if p.Update(3) {
		t.Error("expected no report one second after the last one")
	}
	if !p.Update(10) {
		t.Error("expected the final step to be reported")
	}
}

func TestProgress_Output(t *testing.T) {
	read := initFile(t, "info")

	clock := time.Unix(1000, 0)
	p := newProgress("splitting", 4, func() time.Time { return clock })
	p.Update(1)
	clock = clock.Add(ProgressInterval)
	p.Update(3)
	p.Update(4)

	content := read()
	if strings.Contains(content, "1/4") {
		t.Errorf("rate-limited step was logged:\n%s", content)
	}
	for _, want := range []string{"splitting", "3/4 (75.0%)", "4/4 (100.0%)"} {
		if !strings.Contains(content, want) {
			t.Errorf("expected %q in:\n%s", want, content)
		}
	}
}

func TestProgress_EmptyStep(t *testing.T) {
	read := initFile(t, "info")
	if !NewProgress("merging", 0).Update(0) {
		t.Fatal("an empty step is already complete")
	}
	if content := read(); !strings.Contains(content, "0/0 (100.0%)") {
		t.Errorf("unexpected output:\n%s", content)
	}
}

func TestLoggerUsableBeforeInit(t *testing.T) {
	InitNop()
	// must not panic
	Info("discarded")
	Sugar.Debugf("discarded %d", 1)
}
