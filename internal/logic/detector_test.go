package logic

import (
	"testing"
	"time"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

// feed processes samples spaced step apart starting at start and returns
// every emitted event.
func feed(d *Detector, start time.Time, step time.Duration, samples ...Input) []Event {
	var events []Event
	for i, in := range samples {
		in.Time = start.Add(time.Duration(i) * step)
		events = append(events, d.Process(in)...)
	}
	return events
}

func repeatInput(in Input, n int) []Input {
	out := make([]Input, n)
	for i := range out {
		out[i] = in
	}
	return out
}

// baselined returns a detector that has settled on both buttons released,
// and the time of the next sample.
func baselined(t *testing.T) (*Detector, time.Time) {
	t.Helper()
	d := NewDetector(250*time.Millisecond, t0)
	feed(d, t0, 100*time.Millisecond, repeatInput(Input{}, 4)...)
	if !d.IsBaselined() {
		t.Fatal("detector not baselined after 300ms of stable input")
	}
	return d, t0.Add(400 * time.Millisecond)
}

func TestNewDetector(t *testing.T) {
	d := NewDetector(250*time.Millisecond, t0)
	if d.debounceDuration != 250*time.Millisecond {
		t.Errorf("expected debounce duration 250ms, got %v", d.debounceDuration)
	}
	if d.IsBaselined() {
		t.Error("new detector should not be baselined")
	}
	b1, b2 := d.CurrentState()
	if b1 != "" || b2 != "" {
		t.Errorf("expected empty states before baseline, got %q %q", b1, b2)
	}
}

func TestBaselineEstablishment(t *testing.T) {
	d := NewDetector(250*time.Millisecond, t0)

	if ev := d.Process(Input{B1: true, Time: t0}); len(ev) != 0 {
		t.Errorf("expected no events during baseline, got %d", len(ev))
	}
	if ev := d.Process(Input{B1: true, Time: t0.Add(200 * time.Millisecond)}); len(ev) != 0 {
		t.Errorf("expected no events during baseline, got %d", len(ev))
	}
	if d.IsBaselined() {
		t.Error("should not be baselined before debounce period")
	}

	if ev := d.Process(Input{B1: true, Time: t0.Add(250 * time.Millisecond)}); len(ev) != 0 {
		t.Errorf("expected no events at baseline establishment, got %d", len(ev))
	}
	if !d.IsBaselined() {
		t.Error("should be baselined after debounce period")
	}

	b1, b2 := d.CurrentState()
	if b1 != StatePressed || b2 != StateReleased {
		t.Errorf("expected (PRESSED, RELEASED), got (%s, %s)", b1, b2)
	}
}

func TestBaselineRestartsOnChange(t *testing.T) {
	d := NewDetector(250*time.Millisecond, t0)

	d.Process(Input{B1: true, Time: t0})
	d.Process(Input{B1: false, Time: t0.Add(200 * time.Millisecond)})
	d.Process(Input{B1: false, Time: t0.Add(300 * time.Millisecond)})
	if d.IsBaselined() {
		t.Error("baseline should restart when the level changes")
	}

	d.Process(Input{B1: false, Time: t0.Add(450 * time.Millisecond)})
	if !d.IsBaselined() {
		t.Error("should be baselined 250ms after the last change")
	}
}

func TestSingleTransitions(t *testing.T) {
	tests := []struct {
		name  string
		input Input
		want  EventType
	}{
		{"button 1 pressed", Input{B1: true}, EventB1Pressed},
		{"button 2 pressed", Input{B2: true}, EventB2Pressed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, next := baselined(t)

			events := feed(d, next, 100*time.Millisecond, repeatInput(tt.input, 4)...)
			if len(events) != 1 {
				t.Fatalf("expected 1 event, got %d", len(events))
			}
			if events[0].Type != tt.want {
				t.Errorf("expected %s, got %s", tt.want, events[0].Type)
			}
		})
	}
}

func TestPressAndRelease(t *testing.T) {
	d, next := baselined(t)

	samples := append(repeatInput(Input{B2: true}, 4), repeatInput(Input{}, 4)...)
	events := feed(d, next, 100*time.Millisecond, samples...)

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != EventB2Pressed || events[1].Type != EventB2Released {
		t.Errorf("unexpected events: %s, %s", events[0].Type, events[1].Type)
	}
	if events[1].B2State != StateReleased || events[1].B1State != StateReleased {
		t.Errorf("release event carries wrong states: %+v", events[1])
	}
}

func TestBounceShorterThanDebounce(t *testing.T) {
	d, next := baselined(t)

	samples := append([]Input{{B1: true}, {B1: true}}, repeatInput(Input{}, 4)...)
	if events := feed(d, next, 100*time.Millisecond, samples...); len(events) != 0 {
		t.Errorf("expected bounce to be rejected, got %d events", len(events))
	}
}

func TestSimultaneousTransitions(t *testing.T) {
	d, next := baselined(t)

	events := feed(d, next, 100*time.Millisecond, repeatInput(Input{B1: true, B2: true}, 4)...)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != EventB1Pressed || events[1].Type != EventB2Pressed {
		t.Errorf("expected button 1 then button 2, got %s, %s", events[0].Type, events[1].Type)
	}
	for i, e := range events {
		if e.B1State != StatePressed || e.B2State != StatePressed {
			t.Errorf("event %d: expected both pressed, got %s %s", i, e.B1State, e.B2State)
		}
	}
}

func TestDebounceExactTiming(t *testing.T) {
	d, next := baselined(t)

	if ev := d.Process(Input{B1: true, Time: next}); len(ev) != 0 {
		t.Fatal("no event expected on first differing sample")
	}
	if ev := d.Process(Input{B1: true, Time: next.Add(249 * time.Millisecond)}); len(ev) != 0 {
		t.Fatal("no event expected before debounce elapses")
	}
	ev := d.Process(Input{B1: true, Time: next.Add(250 * time.Millisecond)})
	if len(ev) != 1 || ev[0].Type != EventB1Pressed {
		t.Fatalf("expected BUTTON1_PRESSED exactly at debounce, got %v", ev)
	}
	if !ev[0].Timestamp.Equal(next.Add(250 * time.Millisecond)) {
		t.Errorf("unexpected timestamp %v", ev[0].Timestamp)
	}
}

func TestReleaseCarriesHoldDuration(t *testing.T) {
	d, next := baselined(t)

	// Press confirmed at next+300ms, release confirmed at next+800ms.
	samples := append(repeatInput(Input{B1: true}, 5), repeatInput(Input{}, 4)...)
	events := feed(d, next, 100*time.Millisecond, samples...)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Held != 0 {
		t.Errorf("press event should not carry a hold, got %v", events[0].Held)
	}
	if events[1].Type != EventB1Released || events[1].Held != 500*time.Millisecond {
		t.Errorf("release: got %s held %v, want BUTTON1_RELEASED held 500ms", events[1].Type, events[1].Held)
	}
}

func TestHoldUnknownWhenPressedAtBaseline(t *testing.T) {
	d := NewDetector(250*time.Millisecond, t0)
	feed(d, t0, 100*time.Millisecond, repeatInput(Input{B2: true}, 4)...)
	if !d.IsBaselined() {
		t.Fatal("detector not baselined")
	}

	events := feed(d, t0.Add(400*time.Millisecond), 100*time.Millisecond, repeatInput(Input{}, 4)...)
	if len(events) != 1 || events[0].Type != EventB2Released {
		t.Fatalf("expected BUTTON2_RELEASED, got %+v", events)
	}
	if events[0].Held != 0 {
		t.Errorf("hold should be unknown for a press that predates baseline, got %v", events[0].Held)
	}
}

func TestButtonsHoldIndependently(t *testing.T) {
	d, next := baselined(t)

	var samples []Input
	samples = append(samples, repeatInput(Input{B1: true}, 4)...)           // button 1 down at +300ms
	samples = append(samples, repeatInput(Input{B1: true, B2: true}, 5)...) // button 2 down at +700ms
	samples = append(samples, repeatInput(Input{B2: true}, 6)...)           // button 1 up at +1200ms
	samples = append(samples, repeatInput(Input{}, 4)...)                   // button 2 up at +1800ms
	events := feed(d, next, 100*time.Millisecond, samples...)
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}
	if events[2].Type != EventB1Released || events[2].Held != 900*time.Millisecond {
		t.Errorf("button 1: got %s held %v", events[2].Type, events[2].Held)
	}
	if events[3].Type != EventB2Released || events[3].Held != 1100*time.Millisecond {
		t.Errorf("button 2: got %s held %v", events[3].Type, events[3].Held)
	}
}

func TestEventCounts(t *testing.T) {
	d, next := baselined(t)

	samples := append(repeatInput(Input{B1: true}, 4), repeatInput(Input{}, 4)...)
	samples = append(samples, repeatInput(Input{B2: true}, 4)...)
	feed(d, next, 100*time.Millisecond, samples...)
	d.RecordModeChange()

	got := d.EventCountsSnapshot()
	want := EventCounts{B1Pressed: 1, B1Released: 1, B2Pressed: 1, ModeChanges: 1}
	if got != want {
		t.Errorf("counts: got %+v, want %+v", got, want)
	}
}

func TestCheckHeartbeat(t *testing.T) {
	d := NewDetector(250*time.Millisecond, t0)

	if hb := d.CheckHeartbeat(t0.Add(time.Hour), time.Minute); hb != nil {
		t.Error("no heartbeat expected before baseline")
	}

	feed(d, t0, 100*time.Millisecond, repeatInput(Input{}, 4)...)

	if hb := d.CheckHeartbeat(t0.Add(time.Hour), 0); hb != nil {
		t.Error("heartbeat should be disabled with zero interval")
	}
	if hb := d.CheckHeartbeat(t0.Add(59*time.Second), time.Minute); hb != nil {
		t.Error("no heartbeat expected before interval")
	}

	hb := d.CheckHeartbeat(t0.Add(time.Minute), time.Minute)
	if hb == nil {
		t.Fatal("expected heartbeat at interval")
	}
	if hb.Uptime != time.Minute {
		t.Errorf("uptime: got %v, want 1m", hb.Uptime)
	}

	if hb := d.CheckHeartbeat(t0.Add(90*time.Second), time.Minute); hb != nil {
		t.Error("interval should restart from the last heartbeat")
	}
	if hb := d.CheckHeartbeat(t0.Add(2*time.Minute), time.Minute); hb == nil {
		t.Error("expected second heartbeat")
	}
}
