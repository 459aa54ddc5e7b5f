package internal

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger("DEBUG", "json", &buf)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	if logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", logger.GetLevel())
	}

	logger.WithField("component", "test").Info("hello")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q", buf.String())
	}
	if entry["component"] != "test" || entry["msg"] != "hello" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestNewLogger_BadLevel(t *testing.T) {
	if _, err := NewLogger("chatty", "text", nil); err == nil {
		t.Error("expected an error for an unknown level")
	}
}

func TestNewDefaultLogger_FallsBackToInfo(t *testing.T) {
	t.Setenv("LOG_LEVEL", "nonsense")
	if got := NewDefaultLogger().GetLevel(); got != logrus.InfoLevel {
		t.Errorf("level = %v, want info", got)
	}
}
