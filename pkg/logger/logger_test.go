package logger

import "testing"

func TestInitValidLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		if err := Init(level); err != nil {
			t.Errorf("Init(%q) returned error: %v", level, err)
		}
		if Get() == nil {
			t.Errorf("Get() returned nil after Init(%q)", level)
		}
	}
}

func TestInitInvalidLevel(t *testing.T) {
	if err := Init("verbose"); err == nil {
		t.Error("Init(verbose) should fail")
	}
}

func TestGetBeforeInit(t *testing.T) {
	globalLogger = nil
	if Get() == nil {
		t.Error("Get() before Init should fall back to the slog default")
	}
}
