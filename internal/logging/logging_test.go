package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWritesToConsoleAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "researcher.log")
	var console bytes.Buffer
	if err := Init(path, &console); err != nil {
		t.Fatalf("init: %v", err)
	}
	Event("indexed %d chunks", 3)
	if err := Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "indexed 3 chunks") || !strings.Contains(console.String(), "indexed 3 chunks") {
		t.Fatalf("event missing: file=%q console=%q", data, console.String())
	}
}

func TestStatusAndWarn(t *testing.T) {
	if err := Init("", nil); err != nil {
		t.Fatal(err)
	}
	defer Close()
	var out bytes.Buffer
	Status(&out, "built %s", "index")
	Warn(&out, "wikipedia down")
	if !strings.Contains(out.String(), "built index") || !strings.Contains(out.String(), "warning: wikipedia down") {
		t.Fatalf("unexpected output %q", out.String())
	}
}
