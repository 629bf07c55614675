package uptime

import (
	"testing"
	"time"

	testingclock "k8s.io/utils/clock/testing"
)

func TestCorrectionThenTicks(t *testing.T) {
	fc := testingclock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	ext := New(fc)
	defer ext.Stop()

	if ext.Synced() {
		t.Fatalf("expected unsynced extrapolator before first correction")
	}
	if ext.C() != nil {
		t.Fatalf("expected no tick channel before first correction")
	}

	ext.Correct(100)
	if got := ext.Display(); got != 100 {
		t.Fatalf("expected 100 right after correction, got %d", got)
	}
	for i := 0; i < 5; i++ {
		fc.Step(time.Second)
		select {
		case <-ext.C():
		default:
			t.Fatalf("expected tick %d to be delivered", i+1)
		}
		ext.Tick()
	}
	if got := ext.Display(); got != 105 {
		t.Fatalf("expected 105 after five ticks, got %d", got)
	}

	ext.Correct(50)
	if got := ext.Display(); got != 50 {
		t.Fatalf("expected correction to override to 50, got %d", got)
	}
	if got := ext.Tick(); got != 50 {
		t.Fatalf("expected 50 with no time elapsed since correction, got %d", got)
	}
}

func TestCorrectionReplacesTicker(t *testing.T) {
	fc := testingclock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	ext := New(fc)
	defer ext.Stop()

	ext.Correct(10)
	first := ext.C()
	ext.Correct(20)
	second := ext.C()
	if first == nil || second == nil {
		t.Fatalf("expected running ticker after corrections")
	}
	if first == second {
		t.Fatalf("expected correction to replace the ticker")
	}

	ext.Stop()
	if ext.C() != nil {
		t.Fatalf("expected no tick channel after stop")
	}
}

func TestCorrectionIgnoresFractionAndNegative(t *testing.T) {
	fc := testingclock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	ext := New(fc)
	defer ext.Stop()

	ext.Correct(12.9)
	if got := ext.Display(); got != 12 {
		t.Fatalf("expected whole seconds 12, got %d", got)
	}
	ext.Correct(-4)
	if got := ext.Display(); got != 0 {
		t.Fatalf("expected negative correction clamped to 0, got %d", got)
	}
}

func TestTickUsesElapsedWholeSeconds(t *testing.T) {
	fc := testingclock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	ext := New(fc)
	defer ext.Stop()

	ext.Correct(7)
	fc.SetTime(fc.Now().Add(2500 * time.Millisecond))
	if got := ext.Tick(); got != 9 {
		t.Fatalf("expected 9 after 2.5s, got %d", got)
	}
}

func TestLabelAndHumanize(t *testing.T) {
	if got := Label(0, false); got != "Service uptime: Loading…" {
		t.Fatalf("unexpected unsynced label %q", got)
	}
	if got := Label(105, true); got != "Service uptime: 105s" {
		t.Fatalf("unexpected label %q", got)
	}

	cases := map[int64]string{
		0:      "0s",
		59:     "59s",
		61:     "1m 1s",
		3600:   "1h 0m 0s",
		90061:  "1d 1h 1m 1s",
		172800: "2d 0h 0m 0s",
	}
	for in, expected := range cases {
		if got := Humanize(in); got != expected {
			t.Fatalf("humanize %d: expected %q got %q", in, expected, got)
		}
	}
}
