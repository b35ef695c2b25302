package harness

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScenarios(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no scenario files found")
	}

	for _, file := range files {
		name := filepath.Base(file)
		t.Run(name, func(t *testing.T) {
			RunWithGolden(t, file)
		})
	}
}

func TestLoadScenario_RejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	body := []byte("name: x\ndescription: y\nflows:\n  - op: undo\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadScenario(path); err == nil {
		t.Error("unknown top-level field accepted")
	}
}

func TestLoadScenario_RequiresFlow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	body := []byte("name: x\ndescription: y\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadScenario(path); err == nil {
		t.Error("scenario without flow accepted")
	}
}

func TestLoadScenario_RejectsUnknownOp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "op.yaml")
	body := []byte("name: x\ndescription: y\nflow:\n  - op: explode\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadScenario(path); err == nil {
		t.Error("unknown op accepted")
	}
}
