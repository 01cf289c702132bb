package router

import (
	"testing"

	"github.com/dspgraph-audio/engine/pkg/midi"
	"github.com/dspgraph-audio/engine/pkg/scale"
)

func noteOn(ch, note, vel uint8) midi.Event {
	return midi.NoteOnEvent{BaseEvent: midi.BaseEvent{EventChannel: ch}, NoteNumber: note, Velocity: vel}
}

func noteOff(ch, note uint8) midi.Event {
	return midi.NoteOffEvent{BaseEvent: midi.BaseEvent{EventChannel: ch}, NoteNumber: note, Velocity: 0}
}

func cc(ch, controller, value uint8) midi.Event {
	return midi.ControlChangeEvent{BaseEvent: midi.BaseEvent{EventChannel: ch}, Controller: controller, Value: value}
}

func TestPolyphonicAssignsDistinctVoices(t *testing.T) {
	r := New(Polyphonic, 4, scale.NewEqualTemperament(440))

	c1 := r.RouteEvent(noteOn(1, 60, 100))
	c2 := r.RouteEvent(noteOn(1, 64, 100))
	if len(c1) != 1 || len(c2) != 1 {
		t.Fatalf("expected 1 change each, got %d and %d", len(c1), len(c2))
	}
	if c1[0].Voice == c2[0].Voice {
		t.Fatalf("two simultaneous notes assigned the same voice %d", c1[0].Voice)
	}
}

func TestPolyphonicStealsOldestDeterministically(t *testing.T) {
	run := func() []int {
		r := New(Polyphonic, 2, scale.NewEqualTemperament(440))
		r.RouteEvent(noteOn(1, 60, 100))
		r.Tick()
		r.RouteEvent(noteOn(1, 64, 100))
		r.Tick()
		changes := r.RouteEvent(noteOn(1, 67, 100)) // must steal voice holding 60
		voices := make([]int, len(changes))
		for i, c := range changes {
			voices[i] = c.Voice
		}
		return voices
	}
	a := run()
	b := run()
	if len(a) != 1 || len(b) != 1 || a[0] != b[0] {
		t.Fatalf("non-deterministic steal: %v vs %v", a, b)
	}
}

func TestUnisonTriggersAllVoices(t *testing.T) {
	r := New(Unison, 3, scale.NewEqualTemperament(440))
	changes := r.RouteEvent(noteOn(1, 60, 100))
	if len(changes) != 3 {
		t.Fatalf("got %d changes, want 3", len(changes))
	}
	seen := map[int]bool{}
	for _, c := range changes {
		seen[c.Voice] = true
	}
	if len(seen) != 3 {
		t.Fatalf("unison changes did not cover every voice: %v", changes)
	}
}

func TestMPEChannelMapsToVoice(t *testing.T) {
	r := New(MPE, 4, scale.NewEqualTemperament(440))
	changes := r.RouteEvent(noteOn(2, 60, 100)) // member channel 2 -> voice 0
	if len(changes) != 1 || changes[0].Voice != 0 {
		t.Fatalf("got %+v, want voice 0", changes)
	}
	changes = r.RouteEvent(noteOn(3, 62, 100)) // member channel 3 -> voice 1
	if len(changes) != 1 || changes[0].Voice != 1 {
		t.Fatalf("got %+v, want voice 1", changes)
	}
}

func TestSustainPedalConvertsNoteOffToSustained(t *testing.T) {
	r := New(Polyphonic, 2, scale.NewEqualTemperament(440))
	r.RouteEvent(noteOn(1, 60, 100))
	r.RouteEvent(cc(1, midi.CCSustain, 127))

	changes := r.RouteEvent(noteOff(1, 60))
	if len(changes) != 1 || changes[0].Kind != GateSustained {
		t.Fatalf("got %+v, want one GateSustained change", changes)
	}
	if r.ActiveVoiceCount() != 1 {
		t.Fatalf("sustained voice should still count active, got %d", r.ActiveVoiceCount())
	}

	released := r.RouteEvent(cc(1, midi.CCSustain, 0))
	if len(released) != 1 || released[0].Kind != GateOff {
		t.Fatalf("releasing sustain pedal should force GateOff, got %+v", released)
	}
}
