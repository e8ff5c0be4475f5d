package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tralvick/backloghub/pkg/logger"
)

func TestScanLogsFindsLoggerErrors(t *testing.T) {
	dir := t.TempDir()

	f, err := os.OpenFile(filepath.Join(dir, "cli.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatalf("open log file: %v", err)
	}
	logger.Init(logger.DEBUG, false, f)
	logger.GetLogger().Error("api_request_failed", "method", "GET", "path", "/backlogs")
	logger.GetLogger().Info("api_request", "method", "GET", "path", "/backlogs")
	f.Close()

	var errorLines, total int
	err = scanLogs(dir, func(file string, _ int, line string) {
		total++
		if file != "cli.log" {
			t.Errorf("unexpected file %q", file)
		}
		if strings.Contains(line, " ERROR ") {
			errorLines++
			if !strings.Contains(line, "api_request_failed") {
				t.Errorf("error line missing event: %q", line)
			}
		}
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if total != 2 {
		t.Errorf("scanned %d lines, want 2", total)
	}
	if errorLines != 1 {
		t.Errorf("found %d error lines, want 1", errorLines)
	}
}

func TestScanLogsSkipsNonLogFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ERROR not a log\n"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "old.log"), []byte("one\ntwo\n"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	var lines []string
	if err := scanLogs(dir, func(_ string, _ int, line string) {
		lines = append(lines, line)
	}); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(lines) != 2 || lines[0] != "one" || lines[1] != "two" {
		t.Errorf("scanned lines = %v, want [one two]", lines)
	}
}
