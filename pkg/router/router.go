// Package router assigns incoming MIDI-style events to voice indices and
// emits the resulting per-voice change lists, per spec §4.4. It is
// grounded on the teacher's pkg/framework/voice.Allocator (round-robin
// free-voice search, age-based stealing, sustain-pedal bookkeeping) but
// restructured around named Policies and a single RouteEvent entry
// point that returns the exact set of voices a single event touched,
// rather than mutating opaque Voice objects directly — the router
// itself holds no audio state, only the assignment bookkeeping; actual
// per-voice params are applied by the caller from the returned changes.
package router

import (
	"github.com/dspgraph-audio/engine/internal/logging"
	"github.com/dspgraph-audio/engine/pkg/midi"
	"github.com/dspgraph-audio/engine/pkg/scale"
)

// Policy selects how incoming notes are assigned to voice indices.
type Policy int

const (
	// Unison assigns every note to every voice simultaneously.
	Unison Policy = iota
	// Polyphonic assigns one voice per note, round-robin over free
	// voices, stealing the oldest active voice when all are busy.
	Polyphonic
	// MPE treats channel 1 as the global/common channel (broadcast
	// expression), and channels 2..16 as per-voice member channels,
	// mapped to a voice index by (channel-2) mod voiceCount.
	MPE
)

// Change is one voice's state transition produced by routing a single
// event. Kind is one of the ChangeKind constants below.
type Change struct {
	Voice     int
	Kind      ChangeKind
	Note      uint8
	Velocity  uint8
	LogPitch  float64
	Value     float64 // CC/pressure/bend normalized value, meaning depends on Kind
	Channel   uint8
}

// ChangeKind names what happened to a voice.
type ChangeKind int

const (
	GateOn ChangeKind = iota
	GateOff
	GateSustained
	PitchBend
	Pressure
	ControlChange
)

// Router holds voice-assignment state for one Policy. It is not
// goroutine-safe — events are expected to arrive from a single
// event-decoding thread ahead of the audio thread, per spec §5.
type Router struct {
	policy     Policy
	voiceCount int
	scale      scale.Scale

	voiceNote   []uint8 // note held by each voice, 0 when free; voiceActive marks which are in use
	voiceAge    []int64
	voiceActive []bool
	noteVoices  map[uint8][]int

	age          int64
	lastFreeScan int
	sustainOn    bool
	sustained    map[uint8]bool
}

// New builds a Router for voiceCount voices under policy, using sc to
// convert note numbers to pitch.
func New(policy Policy, voiceCount int, sc scale.Scale) *Router {
	if voiceCount < 1 {
		voiceCount = 1
	}
	return &Router{
		policy:      policy,
		voiceCount:  voiceCount,
		scale:       sc,
		voiceNote:   make([]uint8, voiceCount),
		voiceAge:    make([]int64, voiceCount),
		voiceActive: make([]bool, voiceCount),
		noteVoices:  make(map[uint8][]int),
		sustained:   make(map[uint8]bool),
	}
}

// Tick advances the router's age counter once per processed vector, so
// stealOldestVoice has a monotonic age to compare (spec's per-vector event
// routing cadence).
func (r *Router) Tick() { r.age++ }

// RouteEvent applies one event and returns the voice changes it caused.
// Changes for a single note follow the order its voices were assigned
// (voice-index order under Unison), and controller broadcasts come in
// voice-index order; when lifting the sustain pedal releases several
// notes, the order across those notes is not defined.
func (r *Router) RouteEvent(e midi.Event) []Change {
	switch ev := e.(type) {
	case midi.NoteOnEvent:
		if ev.Velocity == 0 {
			return r.noteOff(ev.EventChannel, ev.NoteNumber)
		}
		return r.noteOn(ev.EventChannel, ev.NoteNumber, ev.Velocity)
	case midi.NoteOffEvent:
		return r.noteOff(ev.EventChannel, ev.NoteNumber)
	case midi.ControlChangeEvent:
		if ev.Controller == midi.CCSustain {
			return r.setSustain(ev.Value >= 64)
		}
		return r.broadcastValue(ev.EventChannel, ControlChange, float64(ev.Value)/127.0)
	case midi.PitchBendEvent:
		return r.broadcastValue(ev.EventChannel, PitchBend, ev.NormalizedValue())
	case midi.ChannelPressureEvent:
		return r.broadcastValue(ev.EventChannel, Pressure, float64(ev.Pressure)/127.0)
	case midi.PolyPressureEvent:
		return r.notePressure(ev.NoteNumber, float64(ev.Pressure)/127.0)
	}
	return nil
}

func (r *Router) noteOn(channel uint8, note, velocity uint8) []Change {
	switch r.policy {
	case Unison:
		return r.noteOnUnison(note, velocity)
	case MPE:
		return r.noteOnMPE(channel, note, velocity)
	default:
		return r.noteOnPoly(note, velocity)
	}
}

func (r *Router) noteOff(channel uint8, note uint8) []Change {
	if r.sustainOn {
		r.sustained[note] = true
		return r.sustainChanges(note)
	}
	switch r.policy {
	case Unison:
		return r.noteOffUnison(note)
	case MPE:
		return r.noteOffMPE(channel, note)
	default:
		return r.noteOffPoly(note)
	}
}

func (r *Router) sustainChanges(note uint8) []Change {
	voices, ok := r.noteVoices[note]
	if !ok {
		return nil
	}
	changes := make([]Change, 0, len(voices))
	for _, v := range voices {
		changes = append(changes, Change{Voice: v, Kind: GateSustained, Note: note})
	}
	return changes
}

func (r *Router) setSustain(on bool) []Change {
	r.sustainOn = on
	if on {
		return nil
	}
	var changes []Change
	for note := range r.sustained {
		changes = append(changes, r.forceNoteOff(note)...)
	}
	r.sustained = make(map[uint8]bool)
	return changes
}

func (r *Router) forceNoteOff(note uint8) []Change {
	switch r.policy {
	case Unison:
		return r.noteOffUnison(note)
	case MPE:
		return r.noteOffMPE(0, note)
	default:
		return r.noteOffPoly(note)
	}
}

func (r *Router) noteOnPoly(note, velocity uint8) []Change {
	if voices, exists := r.noteVoices[note]; exists && len(voices) > 0 {
		v := voices[0]
		r.voiceAge[v] = r.age
		return []Change{r.gateOnChange(v, note, velocity)}
	}

	v := r.findFreeVoice()
	if v == -1 {
		stolenNote := uint8(0)
		if vv := r.oldestActiveVoice(); vv != -1 {
			stolenNote = r.voiceNote[vv]
		}
		v = r.stealOldestVoice()
		if v == -1 {
			return nil
		}
		logging.VoiceSteal(v, stolenNote, note)
	}
	r.voiceNote[v] = note
	r.voiceActive[v] = true
	r.voiceAge[v] = r.age
	r.noteVoices[note] = []int{v}
	return []Change{r.gateOnChange(v, note, velocity)}
}

func (r *Router) noteOffPoly(note uint8) []Change {
	voices, exists := r.noteVoices[note]
	if !exists {
		return nil
	}
	delete(r.noteVoices, note)
	changes := make([]Change, 0, len(voices))
	for _, v := range voices {
		r.voiceActive[v] = false
		r.voiceNote[v] = 0
		changes = append(changes, Change{Voice: v, Kind: GateOff, Note: note})
	}
	return changes
}

func (r *Router) noteOnUnison(note, velocity uint8) []Change {
	changes := make([]Change, 0, r.voiceCount)
	for v := 0; v < r.voiceCount; v++ {
		r.voiceNote[v] = note
		r.voiceActive[v] = true
		r.voiceAge[v] = r.age
		changes = append(changes, r.gateOnChange(v, note, velocity))
	}
	r.noteVoices[note] = allVoiceIndices(r.voiceCount)
	return changes
}

func (r *Router) noteOffUnison(note uint8) []Change {
	voices, exists := r.noteVoices[note]
	if !exists {
		return nil
	}
	delete(r.noteVoices, note)
	changes := make([]Change, 0, len(voices))
	for _, v := range voices {
		r.voiceActive[v] = false
		r.voiceNote[v] = 0
		changes = append(changes, Change{Voice: v, Kind: GateOff, Note: note})
	}
	return changes
}

// mpeVoice maps an MPE member channel (2..16) to a voice index.
func (r *Router) mpeVoice(channel uint8) int {
	if channel < 2 {
		return -1
	}
	return int(channel-2) % r.voiceCount
}

func (r *Router) noteOnMPE(channel uint8, note, velocity uint8) []Change {
	v := r.mpeVoice(channel)
	if v == -1 {
		return nil
	}
	if voices, exists := r.noteVoices[note]; exists {
		r.noteVoices[note] = append(voices, v)
	} else {
		r.noteVoices[note] = []int{v}
	}
	r.voiceNote[v] = note
	r.voiceActive[v] = true
	r.voiceAge[v] = r.age
	return []Change{r.gateOnChange(v, note, velocity)}
}

func (r *Router) noteOffMPE(channel uint8, note uint8) []Change {
	v := r.mpeVoice(channel)
	voices, exists := r.noteVoices[note]
	if !exists {
		return nil
	}
	var remaining []int
	var changes []Change
	for _, candidate := range voices {
		if channel != 0 && candidate != v {
			remaining = append(remaining, candidate)
			continue
		}
		r.voiceActive[candidate] = false
		r.voiceNote[candidate] = 0
		changes = append(changes, Change{Voice: candidate, Kind: GateOff, Note: note})
	}
	if len(remaining) == 0 {
		delete(r.noteVoices, note)
	} else {
		r.noteVoices[note] = remaining
	}
	return changes
}

func (r *Router) notePressure(note uint8, value float64) []Change {
	voices, exists := r.noteVoices[note]
	if !exists {
		return nil
	}
	changes := make([]Change, 0, len(voices))
	for _, v := range voices {
		changes = append(changes, Change{Voice: v, Kind: Pressure, Note: note, Value: value})
	}
	return changes
}

func (r *Router) broadcastValue(channel uint8, kind ChangeKind, value float64) []Change {
	if r.policy == MPE && channel >= 2 {
		v := r.mpeVoice(channel)
		return []Change{{Voice: v, Kind: kind, Value: value, Channel: channel}}
	}
	changes := make([]Change, 0, r.voiceCount)
	for v := 0; v < r.voiceCount; v++ {
		if !r.voiceActive[v] {
			continue
		}
		changes = append(changes, Change{Voice: v, Kind: kind, Value: value, Channel: channel})
	}
	return changes
}

func (r *Router) gateOnChange(v int, note, velocity uint8) Change {
	return Change{
		Voice:    v,
		Kind:     GateOn,
		Note:     note,
		Velocity: velocity,
		LogPitch: r.scale.NoteToLogPitch(note),
	}
}

// findFreeVoice does a round-robin scan for an inactive voice, matching
// the teacher's Allocator.findFreeVoice (distributes voice reuse evenly
// rather than always picking voice 0).
func (r *Router) findFreeVoice() int {
	start := r.lastFreeScan
	for i := 0; i < r.voiceCount; i++ {
		idx := (start + i + 1) % r.voiceCount
		if !r.voiceActive[idx] {
			r.lastFreeScan = idx
			return idx
		}
	}
	return -1
}

// oldestActiveVoice returns the active voice with the lowest age
// without mutating any state, used only to log what a steal is about
// to discard.
func (r *Router) oldestActiveVoice() int {
	best := -1
	var bestAge int64
	for v := 0; v < r.voiceCount; v++ {
		if !r.voiceActive[v] {
			continue
		}
		if best == -1 || r.voiceAge[v] < bestAge {
			best = v
			bestAge = r.voiceAge[v]
		}
	}
	return best
}

// stealOldestVoice always steals by age: spec P7 requires the router's
// steal policy to be a pure, deterministic function of event order, and
// age (insertion order) is exactly that — no amplitude- or
// pitch-dependent tie-break that could vary between runs.
func (r *Router) stealOldestVoice() int {
	best := r.oldestActiveVoice()
	if best == -1 {
		return -1
	}
	stolenNote := r.voiceNote[best]
	if voices, exists := r.noteVoices[stolenNote]; exists {
		remaining := voices[:0]
		for _, idx := range voices {
			if idx != best {
				remaining = append(remaining, idx)
			}
		}
		if len(remaining) == 0 {
			delete(r.noteVoices, stolenNote)
		} else {
			r.noteVoices[stolenNote] = remaining
		}
	}
	r.voiceActive[best] = false
	r.voiceNote[best] = 0
	return best
}

func allVoiceIndices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// ActiveVoiceCount reports how many voices currently hold a sounding
// note.
func (r *Router) ActiveVoiceCount() int {
	n := 0
	for _, a := range r.voiceActive {
		if a {
			n++
		}
	}
	return n
}
