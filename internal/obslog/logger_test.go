package obslog

import "testing"

func TestRedact_MasksSensitiveKeys(t *testing.T) {
	if got := redact("session_token", "abc123"); got != redactedPlaceholder {
		t.Errorf("expected redaction, got %v", got)
	}
	if got := redact("SECRET_KEY", "xyz"); got != redactedPlaceholder {
		t.Errorf("expected case-insensitive redaction, got %v", got)
	}
	if got := redact("tier", "full"); got != "full" {
		t.Errorf("expected non-sensitive value untouched, got %v", got)
	}
}

func TestToLogxFields_ProducesStableOrder(t *testing.T) {
	fields := map[string]any{"zebra": 1, "alpha": 2, "mid": 3}
	first := toLogxFields(fields)
	second := toLogxFields(fields)

	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("expected 3 fields, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("field order is not stable across calls: %v vs %v", first, second)
		}
	}
}

func TestLevelName_CoversAllLevels(t *testing.T) {
	cases := map[Level]string{
		LevelDebug:   "DEBUG",
		LevelInfo:    "INFO",
		LevelWarning: "WARNING",
		LevelError:   "ERROR",
	}
	for level, want := range cases {
		if got := levelName(level); got != want {
			t.Errorf("levelName(%v) = %q, want %q", level, got, want)
		}
	}
}
