package procs

import (
	"github.com/dspgraph-audio/engine/pkg/graph"
	"github.com/dspgraph-audio/engine/pkg/param"
)

func init() {
	graph.Register(ClassDelay, newDelay)
}

// ClassDelay is the factory class name for Delay.
const ClassDelay = "delay"

// Delay is a linearly-interpolated delay line, adapted from the
// teacher's pkg/dsp/delay.Line into a graph Proc: the circular buffer
// is sized once in PrepareToProcess (the only place a real-time proc
// may allocate) from a construction-time MaxSeconds, and Process reads
// one interpolated sample per output sample while writing the input.
type Delay struct {
	graph.BaseProc

	MaxSeconds float64
	timeSec    *param.Parameter
	feedback   *param.Parameter

	buf        []float32
	writePos   int
	sampleRate float64
}

func newDelay() graph.Proc {
	return &Delay{
		BaseProc:   graph.NewBaseProc(ClassDelay, 1, 1, false, false),
		MaxSeconds: 2.0,
		timeSec:    param.New("timeSec", 0, 2, 0.3),
		feedback:   param.New("feedback", 0, 0.98, 0),
	}
}

func (d *Delay) SetParam(name string, v graph.ParamValue) error {
	if v.Kind != graph.ParamFloat {
		return graph.ErrNameNotFound
	}
	switch name {
	case "timeSec":
		d.timeSec.Set(v.Float)
	case "feedback":
		d.feedback.Set(v.Float)
	default:
		return graph.ErrNameNotFound
	}
	return nil
}

func (d *Delay) PrepareToProcess() error {
	d.sampleRate = 44100
	if ctx := d.Context(); ctx != nil && ctx.SampleRate() > 0 {
		d.sampleRate = ctx.SampleRate()
	}
	size := int(d.MaxSeconds*d.sampleRate) + 1
	if len(d.buf) != size {
		d.buf = make([]float32, size)
	}
	d.writePos = 0
	return nil
}

func (d *Delay) Clear() {
	for i := range d.buf {
		d.buf[i] = 0
	}
	d.writePos = 0
}

func (d *Delay) read(delaySamples float64) float32 {
	n := len(d.buf)
	readPos := float64(d.writePos) - delaySamples
	if readPos < 0 {
		readPos += float64(n)
	}
	i0 := int(readPos)
	frac := float32(readPos - float64(i0))
	s1 := d.buf[i0%n]
	s2 := d.buf[(i0+1)%n]
	return s1*(1-frac) + s2*frac
}

func (d *Delay) Process() {
	if len(d.buf) == 0 {
		return
	}
	delaySamples := d.timeSec.Get() * d.sampleRate
	fb := float32(d.feedback.Get())
	in := d.Input(1).Data()
	out := d.Output(1).Data()
	n := len(d.buf)
	for i, x := range in {
		y := d.read(delaySamples)
		out[i] = y
		d.buf[d.writePos] = x + y*fb
		d.writePos++
		if d.writePos >= n {
			d.writePos = 0
		}
	}
}

var _ graph.Proc = (*Delay)(nil)
