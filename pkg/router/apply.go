package router

import "github.com/dspgraph-audio/engine/pkg/graph"

// VoiceTarget is the minimal surface a voice-holding proc needs to
// expose for Apply to drive it — satisfied by
// pkg/graph/multiplier.Multiplier.
type VoiceTarget interface {
	SetEnabled(index int, on bool) error
	SetCopyParam(index int, name string, v graph.ParamValue) error
}

// ParamNames names a Change's target param on the voice subgraph, so Apply
// can stay generic across synth patches that name their pitch/gate/
// pressure params differently.
type ParamNames struct {
	Pitch    string
	Gate     string
	Velocity string
	Pressure string
	Bend     string
	Value    string // generic CC target, when the patch exposes one
}

// Apply pushes a batch of Changes onto a VoiceTarget (typically a
// multiplier.Multiplier), enabling/disabling copies on Gate transitions
// and forwarding per-voice parameter values. Sustain keeps the voice
// enabled (it still sounds) but forwards no pitch/gate change.
func Apply(t VoiceTarget, changes []Change, names ParamNames) error {
	for _, c := range changes {
		switch c.Kind {
		case GateOn:
			if err := t.SetEnabled(c.Voice, true); err != nil {
				return err
			}
			if names.Pitch != "" {
				if err := t.SetCopyParam(c.Voice, names.Pitch, graph.Float(c.LogPitch)); err != nil {
					return err
				}
			}
			if names.Velocity != "" {
				if err := t.SetCopyParam(c.Voice, names.Velocity, graph.Float(float64(c.Velocity)/127.0)); err != nil {
					return err
				}
			}
			if names.Gate != "" {
				if err := t.SetCopyParam(c.Voice, names.Gate, graph.Float(1)); err != nil {
					return err
				}
			}
		case GateOff:
			if names.Gate != "" {
				if err := t.SetCopyParam(c.Voice, names.Gate, graph.Float(0)); err != nil {
					return err
				}
			}
			if err := t.SetEnabled(c.Voice, false); err != nil {
				return err
			}
		case GateSustained:
			// Voice stays enabled and sounding; only the envelope's own
			// release behavior (if any) changes, which is the target
			// proc's concern, not the router's.
		case Pressure:
			if names.Pressure != "" {
				if err := t.SetCopyParam(c.Voice, names.Pressure, graph.Float(c.Value)); err != nil {
					return err
				}
			}
		case PitchBend:
			if names.Bend != "" {
				if err := t.SetCopyParam(c.Voice, names.Bend, graph.Float(c.Value)); err != nil {
					return err
				}
			}
		case ControlChange:
			if names.Value != "" {
				if err := t.SetCopyParam(c.Voice, names.Value, graph.Float(c.Value)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
