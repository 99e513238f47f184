package debuglog

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestLevel_Ordering(t *testing.T) {
	ordered := []Level{LevelDebug, LevelInfo, LevelNotice, LevelWarning, LevelError, LevelFault}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1] >= ordered[i] {
			t.Errorf("%v should sort below %v", ordered[i-1], ordered[i])
		}
	}
}

func TestLevel_String(t *testing.T) {
	cases := map[Level]string{
		LevelDebug:   "debug",
		LevelInfo:    "info",
		LevelNotice:  "notice",
		LevelWarning: "warning",
		LevelError:   "error",
		LevelFault:   "fault",
	}
	for level, want := range cases {
		if got := level.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", level, got, want)
		}
	}
	if got := Level(42).String(); got != "level(42)" {
		t.Errorf("unknown level = %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"debug", "info", "notice", "warning", "error", "fault"} {
		level, ok := ParseLevel(name)
		if !ok {
			t.Errorf("ParseLevel(%q) not recognised", name)
		}
		if level.String() != name {
			t.Errorf("ParseLevel(%q) = %v, round-trip broken", name, level)
		}
	}

	if level, ok := ParseLevel("warn"); !ok || level != LevelWarning {
		t.Errorf(`ParseLevel("warn") = %v, %v; want warning alias`, level, ok)
	}

	if _, ok := ParseLevel("verbose"); ok {
		t.Error("unknown name should not parse")
	}
}

func TestLevel_JSONUsesNames(t *testing.T) {
	e := Event{Level: LevelNotice, Subsystem: "mqtt", Category: "connect", Message: "x"}

	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"level":"notice"`) {
		t.Errorf("level not serialised by name: %s", data)
	}

	var back Event
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Level != LevelNotice {
		t.Errorf("level = %v after round trip, want notice", back.Level)
	}

	if err := json.Unmarshal([]byte(`{"level":"verbose"}`), &back); err == nil {
		t.Error("unknown level name should not unmarshal")
	}
}

func TestLevel_SlogLevelPreservesOrder(t *testing.T) {
	ordered := []Level{LevelDebug, LevelInfo, LevelNotice, LevelWarning, LevelError, LevelFault}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1].SlogLevel() >= ordered[i].SlogLevel() {
			t.Errorf("slog mapping breaks ordering between %v and %v", ordered[i-1], ordered[i])
		}
	}
}

func TestLogger_WritesEphemeralSink(t *testing.T) {
	var out bytes.Buffer
	eph := slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))

	log := New(eph, "mqtt", "connect")
	log.Info("broker connected", "host", "localhost")

	line := out.String()
	if !strings.Contains(line, "broker connected") {
		t.Errorf("message missing from ephemeral output: %q", line)
	}
	if !strings.Contains(line, "subsystem=mqtt") || !strings.Contains(line, "category=connect") {
		t.Errorf("tags missing from ephemeral output: %q", line)
	}
	if !strings.Contains(line, "host=localhost") {
		t.Errorf("extra args missing from ephemeral output: %q", line)
	}
}

func TestLogger_AppendsToBoundBuffer(t *testing.T) {
	t.Cleanup(func() { Bind(nil) })

	repo := &mockRepository{}
	buf := NewBuffer(repo, Options{})
	Bind(buf)

	log := New(nil, "node", "mutator")
	log.Warning("battery preset changed")
	log.Fault("store unreachable")

	if buf.Len() != 2 {
		t.Fatalf("buffer holds %d events, want 2", buf.Len())
	}
}

func TestLogger_NoBufferBoundDropsDurable(t *testing.T) {
	t.Cleanup(func() { Bind(nil) })
	Bind(nil)

	var out bytes.Buffer
	eph := slog.New(slog.NewTextHandler(&out, nil))

	// Must not panic and must still write the ephemeral line.
	log := New(eph, "api", "server")
	log.Error("listener failed")

	if !strings.Contains(out.String(), "listener failed") {
		t.Errorf("ephemeral output missing: %q", out.String())
	}
}

func TestLogger_WithCategory(t *testing.T) {
	t.Cleanup(func() { Bind(nil) })

	repo := &mockRepository{}
	buf := NewBuffer(repo, Options{})
	Bind(buf)

	base := New(nil, "mqtt", "connect")
	pub := base.WithCategory("publish")
	pub.Info("message sent")

	buf.flush()

	stored := repo.stored()
	if len(stored) != 1 {
		t.Fatalf("stored %d events, want 1", len(stored))
	}
	if stored[0].Subsystem != "mqtt" || stored[0].Category != "publish" {
		t.Errorf("tags = %q/%q, want mqtt/publish", stored[0].Subsystem, stored[0].Category)
	}
}
