package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestTextOutputIncludesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithLevel(DebugLevel), WithWriter(&buf))
	l.Info("scan complete", Int("sectors", 4), Str("state", "ok"))
	out := buf.String()
	if !strings.Contains(out, "scan complete") {
		t.Fatalf("missing message: %q", out)
	}
	if !strings.Contains(out, "sectors=4") || !strings.Contains(out, "state=ok") {
		t.Fatalf("missing fields: %q", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithLevel(WarnLevel), WithWriter(&buf))
	l.Info("dropped")
	l.Warn("kept")
	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info leaked through warn filter: %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Fatalf("warn entry missing: %q", out)
	}
}

func TestSetLevelAtRuntime(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithLevel(ErrorLevel), WithWriter(&buf))
	l.Info("before")
	l.SetLevel(DebugLevel)
	l.Debug("after")
	out := buf.String()
	if strings.Contains(out, "before") {
		t.Fatalf("entry below level emitted: %q", out)
	}
	if !strings.Contains(out, "after") {
		t.Fatalf("debug entry missing after SetLevel: %q", out)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithFormat(JSONFormat), WithWriter(&buf))
	l.With(Component("engine")).Info("hello", Int("n", 1))
	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("not json: %v: %q", err, buf.String())
	}
	if m["msg"] != "hello" || m["component"] != "engine" {
		t.Fatalf("unexpected entry: %v", m)
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{"debug": DebugLevel, "INFO": InfoLevel, "warning": WarnLevel, "error": ErrorLevel, "": InfoLevel} {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNopLoggerIsSilent(t *testing.T) {
	l := NewNop()
	l.With(Str("k", "v")).Error("ignored", Err(nil))
}
