// Package procs is the minimal leaf DSP operator library needed to
// exercise the graph engine end to end: a sine oscillator, a gain
// stage, a summing mixer, a delay line, and a constant source. A
// complete operator catalogue (filters, envelopes, distortion,
// reverb, ...) is out of scope — see SPEC_FULL.md's Non-goals.
package procs

import (
	"math"

	"github.com/dspgraph-audio/engine/pkg/graph"
	"github.com/dspgraph-audio/engine/pkg/param"
	"github.com/dspgraph-audio/engine/pkg/scale"
	"github.com/dspgraph-audio/engine/pkg/signal"
)

func init() {
	graph.Register(ClassSine, newSine)
}

// ClassSine is the factory class name for Sine.
const ClassSine = "sine"

// Sine is a phase-accumulating sine oscillator, adapted from the
// teacher's pkg/dsp/oscillator.Oscillator to a graph Proc: pitch arrives
// as a published "pitch" param in log2-octaves-relative-to-A4 (see
// pkg/scale), not a plain frequency, so it composes directly with the
// event router's voice pitch output.
type Sine struct {
	graph.BaseProc

	pitch *param.Parameter // log2 octaves relative to refFreq
	gain  *param.Parameter

	refFreq    float64
	sampleRate float64
	phase      float64
	phaseInc   float64
}

func newSine() graph.Proc {
	return &Sine{
		BaseProc: graph.NewBaseProc(ClassSine, 0, 1, false, false),
		pitch:    param.New("pitch", -10, 10, 0),
		gain:     param.New("gain", 0, 1, 1),
		refFreq:  440.0,
	}
}

// SetParam accepts "pitch" (log2 octaves relative to A4) and "gain"
// (linear 0-1).
func (s *Sine) SetParam(name string, v graph.ParamValue) error {
	if v.Kind != graph.ParamFloat {
		return graph.ErrNameNotFound
	}
	switch name {
	case "pitch":
		s.pitch.Set(v.Float)
	case "gain":
		s.gain.Set(v.Float)
	default:
		return graph.ErrNameNotFound
	}
	return nil
}

// PrepareToProcess reads the enclosing container's sample rate and
// resets phase to a quiescent start.
func (s *Sine) PrepareToProcess() error {
	if ctx := s.Context(); ctx != nil {
		s.sampleRate = ctx.SampleRate()
	}
	if s.sampleRate <= 0 {
		s.sampleRate = 44100
	}
	s.updatePhaseInc()
	return nil
}

func (s *Sine) updatePhaseInc() {
	freq := scale.LogPitchToFreq(s.pitch.Get(), s.refFreq)
	s.phaseInc = freq / s.sampleRate
}

// Clear resets the oscillator phase to 0.
func (s *Sine) Clear() { s.phase = 0 }

// Process fills output 1 with one vector of sine samples at the
// current pitch and gain, sampled once at the top of the vector per
// spec §5's no-mid-vector-changes rule.
func (s *Sine) Process() {
	s.updatePhaseInc()
	g := float32(s.gain.Get())
	out := s.Output(1).Data()
	for i := range out {
		out[i] = g * float32(math.Sin(2.0*math.Pi*s.phase))
		s.phase += s.phaseInc
		if s.phase >= 1.0 {
			s.phase -= math.Floor(s.phase)
		}
	}
	signal.FlushDenormals(out)
}

var _ graph.Proc = (*Sine)(nil)
