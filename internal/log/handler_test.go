package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

// TestCompactHandler_MasksSensitiveKeys tests that sensitive keys are masked.
func TestCompactHandler_MasksSensitiveKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		key      string
		value    string
		wantMask bool
	}{
		{name: "cookie key is masked", key: "cookie", value: "consent=yes", wantMask: true},
		{name: "Cookie key (uppercase) is masked", key: "Cookie", value: "consent=yes", wantMask: true},
		{name: "authorization key is masked", key: "authorization", value: "abc", wantMask: true},
		{name: "session key is masked", key: "session", value: "9c1d", wantMask: true},
		{name: "bearer value is masked", key: "header", value: "Bearer abc.def", wantMask: true},
		{name: "url is kept", key: "url", value: "https://www.ecb.europa.eu/", wantMask: false},
		{name: "title is kept", key: "title", value: "Monetary policy decisions", wantMask: false},
		{name: "run id is kept", key: "run", value: "2f1c3d0e-8a7b-4c6d-9e5f-0a1b2c3d4e5f", wantMask: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(NewCompactHandler(slog.NewTextHandler(&buf, nil), 0))
			logger.Info("test", tt.key, tt.value)

			out := buf.String()
			masked := strings.Contains(out, MaskValue)
			if masked != tt.wantMask {
				t.Errorf("masked = %v, expected %v (output %q)", masked, tt.wantMask, out)
			}
			if tt.wantMask && strings.Contains(out, tt.value) {
				t.Errorf("value %q leaked into output %q", tt.value, out)
			}
		})
	}
}

// TestCompactHandler_TruncatesLongValues tests shortening of long strings.
func TestCompactHandler_TruncatesLongValues(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewCompactHandler(slog.NewJSONHandler(&buf, nil), 10))
	logger.Info("fetched", "text", strings.Repeat("ä", 50), "short", "ok")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if got := entry["text"]; got != strings.Repeat("ä", 10)+"…" {
		t.Errorf("got %q", got)
	}
	if got := entry["short"]; got != "ok" {
		t.Errorf("got %q", got)
	}
}

type testValuer struct{ secret string }

func (v testValuer) LogValue() slog.Value {
	return slog.GroupValue(slog.String("cookie", v.secret), slog.String("name", "x"))
}

// TestCompactHandler_Groups tests groups, LogValuers and WithAttrs.
func TestCompactHandler_Groups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewCompactHandler(slog.NewTextHandler(&buf, nil), 0))
	logger = logger.With("session", "abc").WithGroup("req")
	logger.Info("test", "v", testValuer{secret: "topsecret"})

	out := buf.String()
	if strings.Contains(out, "topsecret") || strings.Contains(out, "session=abc") {
		t.Errorf("sensitive value leaked: %q", out)
	}
	if !strings.Contains(out, "req.v.name=x") {
		t.Errorf("expected grouped attribute in %q", out)
	}
}

// TestNewLogger tests logger construction.
func TestNewLogger(t *testing.T) {
	t.Parallel()

	t.Run("info level by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, false, false)
		logger.Debug("hidden")
		logger.Info("shown")

		if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
			t.Errorf("unexpected output %q", buf.String())
		}
	})

	t.Run("verbose enables debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		NewLogger(&buf, true, false).Debug("detail")
		if !strings.Contains(buf.String(), "detail") {
			t.Errorf("unexpected output %q", buf.String())
		}
	})

	t.Run("json output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		NewLogger(&buf, false, true).Info("msg", "k", "v")

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("invalid JSON output: %v", err)
		}
		if entry["k"] != "v" {
			t.Errorf("unexpected entry %v", entry)
		}
	})

	t.Run("discard", func(t *testing.T) {
		t.Parallel()

		Discard().Error("dropped")
	})
}
