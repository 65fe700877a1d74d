package logic

import "time"

// button is one debounced input together with the events it emits.
type button struct {
	ChannelState
	onPress   EventType
	onRelease EventType
	// pressedAt is when the current press was confirmed; zero when the
	// button is released or was already held at baseline.
	pressedAt time.Time
}

// Detector debounces both buttons and detects their transitions.
type Detector struct {
	debounceDuration time.Duration
	buttons          [2]button // button 1 first
	baselined        bool
	startTime        time.Time
	eventCounts      EventCounts
	lastHeartbeat    time.Time
}

// NewDetector creates a new button detector with the given debounce duration.
// The startTime is used for calculating uptime in heartbeat events.
func NewDetector(debounceDuration time.Duration, startTime time.Time) *Detector {
	return &Detector{
		debounceDuration: debounceDuration,
		buttons: [2]button{
			{onPress: EventB1Pressed, onRelease: EventB1Released},
			{onPress: EventB2Pressed, onRelease: EventB2Released},
		},
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Process takes a new input sample and returns any events that should be emitted.
// Events are only returned after baseline is established and on state transitions.
func (d *Detector) Process(input Input) []Event {
	var flipped [2]bool
	for i, level := range [2]bool{input.B1, input.B2} {
		flipped[i] = d.settle(&d.buttons[i].ChannelState, boolToState(level), input.Time)
	}

	if !d.baselined {
		d.baselined = d.buttons[0].Baselined && d.buttons[1].Baselined
		return nil
	}

	var events []Event
	for i := range d.buttons {
		if !flipped[i] {
			continue
		}
		b := &d.buttons[i]
		ev := Event{
			Timestamp: input.Time,
			B1State:   d.buttons[0].Stable,
			B2State:   d.buttons[1].Stable,
		}
		if b.Stable == StatePressed {
			ev.Type = b.onPress
			b.pressedAt = input.Time
		} else {
			ev.Type = b.onRelease
			if !b.pressedAt.IsZero() {
				ev.Held = input.Time.Sub(b.pressedAt)
			}
			b.pressedAt = time.Time{}
		}
		d.count(ev.Type)
		events = append(events, ev)
	}
	return events
}

// settle feeds one sample into ch and reports whether its stable state
// flipped. Settling for the first time is a baseline, not a flip.
func (d *Detector) settle(ch *ChannelState, s State, now time.Time) bool {
	if ch.Baselined && s == ch.Stable {
		ch.Pending = ""
		return false
	}
	if ch.Pending != s {
		ch.Pending = s
		ch.PendingSince = now
		return false
	}
	if now.Sub(ch.PendingSince) < d.debounceDuration {
		return false
	}

	flipped := ch.Baselined
	ch.Stable = s
	ch.Pending = ""
	ch.Baselined = true
	return flipped
}

func (d *Detector) count(t EventType) {
	switch t {
	case EventB1Pressed:
		d.eventCounts.B1Pressed++
	case EventB1Released:
		d.eventCounts.B1Released++
	case EventB2Pressed:
		d.eventCounts.B2Pressed++
	case EventB2Released:
		d.eventCounts.B2Released++
	}
}

func boolToState(b bool) State {
	if b {
		return StatePressed
	}
	return StateReleased
}

// IsBaselined returns whether the detector has established a baseline.
func (d *Detector) IsBaselined() bool {
	return d.baselined
}

// CurrentState returns the current stable states.
func (d *Detector) CurrentState() (b1 State, b2 State) {
	return d.buttons[0].Stable, d.buttons[1].Stable
}

// EventCountsSnapshot returns a copy of the event counts.
func (d *Detector) EventCountsSnapshot() EventCounts {
	return d.eventCounts
}

// RecordModeChange counts an LED mode change so it shows up in heartbeats.
func (d *Detector) RecordModeChange() {
	d.eventCounts.ModeChanges++
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if not yet baselined, if the
// interval has not elapsed, or if interval is <= 0 (disabled).
func (d *Detector) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 || !d.baselined {
		return nil
	}
	if now.Sub(d.lastHeartbeat) < interval {
		return nil
	}

	d.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(d.startTime),
		Counts:    d.eventCounts,
	}
}
