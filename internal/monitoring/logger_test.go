package monitoring

import (
	"fmt"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetLogger(t *testing.T) {
	saved := Logf
	t.Cleanup(func() { Logf = saved })

	var got []string
	SetLogger(func(format string, v ...interface{}) {
		got = append(got, fmt.Sprintf(format, v...))
	})
	Logf("body %d entered", 3)
	if len(got) != 1 || got[0] != "body 3 entered" {
		t.Fatalf("custom logger got %q", got)
	}

	SetLogger(nil)
	Logf("dropped")
	if len(got) != 1 {
		t.Errorf("nil logger should discard, got %q", got)
	}
}

func TestLogfDefaultIsUsable(t *testing.T) {
	if Logf == nil {
		t.Fatal("Logf is nil by default")
	}
	Logf("frame %d skipped", 1)
}

func TestNewLogger(t *testing.T) {
	for _, dev := range []bool{false, true} {
		logger, err := NewLogger("debug", dev)
		if err != nil {
			t.Fatalf("NewLogger(debug, %v) error: %v", dev, err)
		}
		if !logger.Core().Enabled(zapcore.DebugLevel) {
			t.Errorf("NewLogger(debug, %v) should enable debug", dev)
		}
	}

	logger, err := NewLogger("warn", false)
	if err != nil {
		t.Fatalf("NewLogger(warn) error: %v", err)
	}
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("warn logger should not enable info")
	}

	if _, err := NewLogger("chatty", false); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestInstall(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	core, logs := observer.New(zapcore.InfoLevel)
	restore := Install(zap.New(core))
	Logf("frame %d", 7)

	if logs.Len() != 1 {
		t.Fatalf("expected 1 log entry, got %d", logs.Len())
	}
	if msg := logs.All()[0].Message; msg != "frame 7" {
		t.Errorf("message = %q, want %q", msg, "frame 7")
	}

	restore()
	Logf("after restore")
	if logs.Len() != 1 {
		t.Errorf("restored logger should not write to zap, got %d entries", logs.Len())
	}
}
