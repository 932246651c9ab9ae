package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"fincal/internal/core"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_AddsComponentAndRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelWarn, Component: ComponentWorker, Output: &buf})
	l.Info("hidden")
	l.Warn("shown", FieldEventID, "e1")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "component=worker") || !strings.Contains(out, "event_id=e1") {
		t.Fatalf("missing fields: %s", out)
	}
}

func TestLogFields(t *testing.T) {
	e := core.Event{ID: "e1", Title: "Coffee", Date: core.NewDate(2024, 3, 5), Kind: core.KindExpense, Amount: core.Cents(350), Category: "Food"}
	f := NewFields().WithEvent(e).WithPeriod(core.MonthlyPeriod(2024, 3)).WithOperation(OpSync)
	if f[FieldAmountCents] != int64(350) || f[FieldMonth] != 3 || f[FieldDate] != "2024-03-05" {
		t.Fatalf("unexpected fields: %v", f)
	}
	if len(f.Args()) != 2*len(f) {
		t.Fatalf("args should hold key/value pairs: %v", f.Args())
	}

	normal := NewFields().WithEvent(core.Event{ID: "n", Kind: core.KindNormal}).WithError(nil)
	if _, ok := normal[FieldAmountCents]; ok {
		t.Fatal("normal events carry no amount")
	}
	if _, ok := normal[FieldError]; ok {
		t.Fatal("nil error should not be recorded")
	}
}

func TestContext(t *testing.T) {
	l := New(Config{Component: ComponentWorker, Output: &bytes.Buffer{}})
	if got := FromContext(NewContext(context.Background(), l)); got != l {
		t.Fatal("logger not carried by context")
	}
	if got := FromContext(context.Background()); got == nil || got.Logger != slog.Default() {
		t.Fatal("expected default logger")
	}
}
