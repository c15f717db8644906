package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("decode %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestErrorCarriesContextFieldsAndStack(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "api", Output: buf, Format: FormatJSON})

	ctx := log.WithRequestID(context.Background(), "req-123")
	ctx = log.WithBookingID(ctx, "bk-1")
	log.Error(ctx, "assign failed", errors.New("staff missing"))

	entries := decodeLines(t, buf)
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	e := entries[0]
	if e["request_id"] != "req-123" || e["booking_id"] != "bk-1" || e["service"] != "api" {
		t.Fatalf("missing context fields: %v", e)
	}
	if e["error"] != "staff missing" || e["stack"] == nil {
		t.Fatalf("missing error or stack: %v", e)
	}
}

func TestWarnStackIsOptional(t *testing.T) {
	buf := &bytes.Buffer{}
	New(Options{Output: buf, Format: FormatJSON, WarnStack: true}).Warn(context.Background(), "slow")
	New(Options{Output: buf, Format: FormatJSON}).Warn(context.Background(), "slow")

	entries := decodeLines(t, buf)
	if entries[0]["stack"] == nil {
		t.Fatalf("expected stack when enabled")
	}
	if entries[1]["stack"] != nil {
		t.Fatalf("unexpected stack when disabled")
	}
}

func TestDerivedFieldsDoNotLeakIntoParent(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{Output: buf, Format: FormatJSON})

	base := log.WithFields(context.Background(), map[string]any{"env": "test"})
	_ = log.WithStaffID(base, "staff-1")
	log.Info(base, "plain")

	e := decodeLines(t, buf)[0]
	if _, ok := e["staff_id"]; ok {
		t.Fatalf("derived field leaked: %v", e)
	}
	if e["env"] != "test" {
		t.Fatalf("parent field lost: %v", e)
	}
}

func TestLevelFiltersInfo(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{Output: buf, Format: FormatJSON, Level: zerolog.WarnLevel})
	log.Info(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level: %s", buf.String())
	}
}

func TestNilLoggerIsNoop(t *testing.T) {
	var log *Logger
	ctx := log.WithField(context.Background(), "k", "v")
	log.Info(ctx, "ignored")
	log.Error(ctx, "ignored", errors.New("x"))
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"invalid": zerolog.InfoLevel,
		" WARN ":  zerolog.WarnLevel,
		"debug":   zerolog.DebugLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
