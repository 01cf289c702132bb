package procs

import "github.com/dspgraph-audio/engine/pkg/graph"

func init() {
	graph.Register(ClassMix, newMix)
}

// ClassMix is the factory class name for Mix.
const ClassMix = "mix"

// Mix sums a variable number of inputs into a single output — the
// compiler wires every input index a pipe addresses and BaseProc.SetInput
// grows the slot count to match, following
// original_source/source/DSP/MLProc.h's hasVariableInputs flag.
type Mix struct {
	graph.BaseProc
}

func newMix() graph.Proc {
	return &Mix{BaseProc: graph.NewBaseProc(ClassMix, 1, 1, true, false)}
}

func (m *Mix) SetParam(name string, v graph.ParamValue) error { return graph.ErrNameNotFound }
func (m *Mix) PrepareToProcess() error                        { return nil }
func (m *Mix) Clear()                                         {}

func (m *Mix) Process() {
	out := m.Output(1)
	out.Clear()
	for i := 1; i <= m.NumInputs(); i++ {
		in := m.Input(i)
		if in == nil {
			continue
		}
		out.Add(in)
	}
}

var _ graph.Proc = (*Mix)(nil)
