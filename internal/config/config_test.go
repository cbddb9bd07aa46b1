package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTuning(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf(`unexpected WriteFile error: %v`, err)
	}
	return path
}

func TestLoadValidTuningFile(t *testing.T) {
	path := writeTuning(t, `
frameCeilingBytes: 1048576
rowGroupSize: 500
rateLimit: 12.5
progressEvery: 1000
`)
	tuning, err := Load(path)
	if err != nil {
		t.Fatalf(`unexpected Load error: %v`, err)
	}
	if tuning.FrameCeilingBytes != 1048576 {
		t.Errorf(`exp FrameCeilingBytes 1048576; got %d`, tuning.FrameCeilingBytes)
	}
	if tuning.RowGroupSize != 500 {
		t.Errorf(`exp RowGroupSize 500; got %d`, tuning.RowGroupSize)
	}
	if tuning.RateLimit != 12.5 {
		t.Errorf(`exp RateLimit 12.5; got %v`, tuning.RateLimit)
	}
	if tuning.ProgressEvery != 1000 {
		t.Errorf(`exp ProgressEvery 1000; got %d`, tuning.ProgressEvery)
	}
}

func TestLoadPartialTuningFileLeavesZeroDefaults(t *testing.T) {
	path := writeTuning(t, "rowGroupSize: 250\n")
	tuning, err := Load(path)
	if err != nil {
		t.Fatalf(`unexpected Load error: %v`, err)
	}
	if tuning.RowGroupSize != 250 {
		t.Errorf(`exp RowGroupSize 250; got %d`, tuning.RowGroupSize)
	}
	if tuning.FrameCeilingBytes != 0 || tuning.RateLimit != 0 || tuning.ProgressEvery != 0 {
		t.Errorf(`exp the rest to stay at zero-value defaults; got %+v`, tuning)
	}
}

func TestLoadRejectsNonIntegerField(t *testing.T) {
	path := writeTuning(t, "rowGroupSize: not-a-number\n")
	_, err := Load(path)
	if err == nil {
		t.Fatal(`exp an error for a non-integer rowGroupSize`)
	}
	if _, ok := err.(*ValidationError); !ok {
		t.Fatalf(`exp *ValidationError; got %T (%v)`, err, err)
	}
}

func TestLoadRejectsNegativeRowGroupSize(t *testing.T) {
	path := writeTuning(t, "rowGroupSize: -5\n")
	_, err := Load(path)
	if err == nil {
		t.Fatal(`exp an error for a negative rowGroupSize`)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal(`exp an error opening a missing tuning file`)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatal(`exp an error for an empty path`)
	}
}

func TestLoadRejectsIndentedKey(t *testing.T) {
	// Tuning keys are flat; any leading whitespace is rejected rather
	// than interpreted as nesting.
	path := writeTuning(t, " rowGroupSize: 5\n")
	if _, err := Load(path); err == nil {
		t.Fatal(`exp an error for an indented key`)
	}
}

func TestLoadRejectsDuplicateKey(t *testing.T) {
	path := writeTuning(t, "rowGroupSize: 5\nrowGroupSize: 10\n")
	if _, err := Load(path); err == nil {
		t.Fatal(`exp an error for a duplicate key`)
	}
}

func TestLoadRejectsLineWithoutColon(t *testing.T) {
	path := writeTuning(t, "rowGroupSize\n")
	if _, err := Load(path); err == nil {
		t.Fatal(`exp an error for a line with no ':'`)
	}
}

func TestLoadIgnoresCommentsAndBlankLines(t *testing.T) {
	path := writeTuning(t, "\n# a comment\nrowGroupSize: 5\n\n# trailing comment\n")
	tuning, err := Load(path)
	if err != nil {
		t.Fatalf(`unexpected Load error: %v`, err)
	}
	if tuning.RowGroupSize != 5 {
		t.Errorf(`exp RowGroupSize 5; got %d`, tuning.RowGroupSize)
	}
}
