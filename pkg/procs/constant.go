package procs

import "github.com/dspgraph-audio/engine/pkg/graph"

func init() {
	graph.Register(ClassConstant, newConstant)
}

// ClassConstant is the factory class name for Constant.
const ClassConstant = "constant"

// Constant emits a fixed value across every sample of the vector,
// marking its output buffer constant so downstream procs can
// special-case a control-rate source without extra bookkeeping of their
// own.
type Constant struct {
	graph.BaseProc
	value float64
}

func newConstant() graph.Proc {
	return &Constant{BaseProc: graph.NewBaseProc(ClassConstant, 0, 1, false, false), value: 0}
}

func (c *Constant) SetParam(name string, v graph.ParamValue) error {
	if name != "value" || v.Kind != graph.ParamFloat {
		return graph.ErrNameNotFound
	}
	c.value = v.Float
	return nil
}

func (c *Constant) PrepareToProcess() error { return nil }
func (c *Constant) Clear()                  {}

func (c *Constant) Process() {
	c.Output(1).Fill(float32(c.value))
}

var _ graph.Proc = (*Constant)(nil)
