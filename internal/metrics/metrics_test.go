package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFlushWritesTextfile(t *testing.T) {
	PagesWritten.WithLabelValues("photo").Inc()

	path := filepath.Join(t.TempDir(), "trailhead.prom")
	if err := Flush(path); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `trailhead_pages_written_total{kind="photo"}`) {
		t.Fatalf("metric missing from textfile:\n%s", data)
	}
}

func TestFlushEmptyPathIsNoop(t *testing.T) {
	if err := Flush(""); err != nil {
		t.Fatal(err)
	}
}
