package procs

import (
	"math"
	"testing"

	"github.com/dspgraph-audio/engine/pkg/graph"
	"github.com/dspgraph-audio/engine/pkg/signal"
)

func TestSineOutputStaysWithinUnitRange(t *testing.T) {
	p, err := graph.NewProc(ClassSine)
	if err != nil {
		t.Fatalf("NewProc: %v", err)
	}
	s := p.(*Sine)
	s.sampleRate = 44100
	if err := s.SetParam("pitch", graph.Float(0)); err != nil { // A4, 440Hz
		t.Fatalf("SetParam: %v", err)
	}
	s.SetOutput(1, signal.New(1))
	if err := s.PrepareToProcess(); err != nil {
		t.Fatalf("PrepareToProcess: %v", err)
	}
	s.Process()

	out := s.Output(1).Data()
	for _, v := range out {
		if math.Abs(float64(v)) > 1.01 {
			t.Fatalf("sample out of range: %v", v)
		}
	}
}

func TestGainAppliesDb(t *testing.T) {
	p, _ := graph.NewProc(ClassGain)
	g := p.(*Gain)
	g.SetInput(1, signal.New(1))
	g.SetOutput(1, signal.New(1))
	g.Input(1).Fill(1)
	if err := g.SetParam("gainDb", graph.Float(0)); err != nil {
		t.Fatalf("SetParam: %v", err)
	}
	if err := g.PrepareToProcess(); err != nil {
		t.Fatalf("PrepareToProcess: %v", err)
	}
	// Run several vectors so the smoother settles to unity gain.
	for i := 0; i < 50; i++ {
		g.Process()
	}
	out := g.Output(1).Data()
	last := out[len(out)-1]
	if math.Abs(float64(last)-1) > 0.01 {
		t.Fatalf("settled gain = %v, want ~1", last)
	}
}

func TestMixSumsVariableInputs(t *testing.T) {
	p, _ := graph.NewProc(ClassMix)
	m := p.(*Mix)
	a := signal.New(1)
	b := signal.New(1)
	a.Fill(1)
	b.Fill(2)
	m.SetInput(1, a)
	m.SetInput(2, b)
	m.SetOutput(1, signal.New(1))
	if err := m.PrepareToProcess(); err != nil {
		t.Fatalf("PrepareToProcess: %v", err)
	}
	m.Process()
	for _, v := range m.Output(1).Data() {
		if v != 3 {
			t.Fatalf("got %v want 3", v)
		}
	}
}

func TestDelayReturnsSilenceBeforeFirstEcho(t *testing.T) {
	p, _ := graph.NewProc(ClassDelay)
	d := p.(*Delay)
	d.SetInput(1, signal.New(1))
	d.SetOutput(1, signal.New(1))
	d.Input(1).Fill(1)
	if err := d.SetParam("timeSec", graph.Float(1.0)); err != nil {
		t.Fatalf("SetParam: %v", err)
	}
	if err := d.PrepareToProcess(); err != nil {
		t.Fatalf("PrepareToProcess: %v", err)
	}
	d.Process()
	for _, v := range d.Output(1).Data() {
		if v != 0 {
			t.Fatalf("expected silence before the 1-second delay arrives, got %v", v)
		}
	}
}

func TestConstantFillsVector(t *testing.T) {
	p, _ := graph.NewProc(ClassConstant)
	c := p.(*Constant)
	c.SetOutput(1, signal.New(1))
	if err := c.SetParam("value", graph.Float(0.5)); err != nil {
		t.Fatalf("SetParam: %v", err)
	}
	c.Process()
	for _, v := range c.Output(1).Data() {
		if v != 0.5 {
			t.Fatalf("got %v want 0.5", v)
		}
	}
}
