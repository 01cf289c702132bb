package procs

import (
	"math"

	"github.com/dspgraph-audio/engine/pkg/graph"
	"github.com/dspgraph-audio/engine/pkg/param"
)

func init() {
	graph.Register(ClassGain, newGain)
}

// ClassGain is the factory class name for Gain.
const ClassGain = "gain"

// Gain scales its single input by a smoothed gain param, grounded on
// the teacher's pkg/dsp/gain helpers (DbToLinear32/ApplyBuffer),
// adapted into a graph Proc with zipper-free smoothing across the
// vector boundary.
type Gain struct {
	graph.BaseProc

	gainDb   *param.Parameter
	smoother *param.Smoother
}

func newGain() graph.Proc {
	return &Gain{
		BaseProc: graph.NewBaseProc(ClassGain, 1, 1, false, false),
		gainDb:   param.New("gainDb", -96, 24, 0),
		smoother: param.NewSmoother(0.005, 44100),
	}
}

func (g *Gain) SetParam(name string, v graph.ParamValue) error {
	if name != "gainDb" || v.Kind != graph.ParamFloat {
		return graph.ErrNameNotFound
	}
	g.gainDb.Set(v.Float)
	return nil
}

func (g *Gain) PrepareToProcess() error {
	rate := 44100.0
	if ctx := g.Context(); ctx != nil && ctx.SampleRate() > 0 {
		rate = ctx.SampleRate()
	}
	g.smoother.SetTimeConstant(0.005, rate)
	g.smoother.Reset(dbToLinear(g.gainDb.Get()))
	return nil
}

func (g *Gain) Clear() {}

func (g *Gain) Process() {
	in := g.Input(1).Data()
	out := g.Output(1).Data()
	target := dbToLinear(g.gainDb.Get())
	for i := range out {
		out[i] = in[i] * float32(g.smoother.Next(target))
	}
}

func dbToLinear(db float64) float64 {
	const minDB = -200.0
	if db <= minDB {
		return 0
	}
	return math.Pow(10.0, db/20.0)
}

var _ graph.Proc = (*Gain)(nil)
