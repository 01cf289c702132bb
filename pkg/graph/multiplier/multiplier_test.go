package multiplier

import (
	"testing"

	"github.com/dspgraph-audio/engine/pkg/graph"
	"github.com/dspgraph-audio/engine/pkg/signal"
)

type constProc struct {
	graph.BaseProc
	value float32
}

func newConstProc() graph.Proc {
	return &constProc{BaseProc: graph.NewBaseProc("const", 0, 1, false, false), value: 1}
}

func (p *constProc) PrepareToProcess() error { return nil }
func (p *constProc) Clear()                  {}
func (p *constProc) SetParam(name string, v graph.ParamValue) error {
	if name == "value" && v.Kind == graph.ParamFloat {
		p.value = float32(v.Float)
		return nil
	}
	return graph.ErrNameNotFound
}
func (p *constProc) Process() {
	p.Output(1).Fill(p.value)
}

func buildVoice(f *graph.Factory) Builder {
	return func(copyIndex int) (*graph.Container, error) {
		c := graph.NewContainerWithFactory("voice", f)
		if _, err := c.AddProc("osc", "const"); err != nil {
			return nil, err
		}
		if err := c.PublishOutput("out", "osc", 1); err != nil {
			return nil, err
		}
		if err := c.PublishParam("value", "osc", "value", graph.NewPublishedParam(0, 10, 1)); err != nil {
			return nil, err
		}
		return c, nil
	}
}

func TestMultiplierOnlySumsEnabled(t *testing.T) {
	f := graph.NewFactory()
	f.Register("const", newConstProc)

	m, err := New("voices", 4, 1, buildVoice(f))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m.SetOutput(1, signal.New(1))

	if err := m.PrepareToProcess(); err != nil {
		t.Fatalf("PrepareToProcess: %v", err)
	}

	if err := m.SetParam("value", graph.Float(2)); err != nil {
		t.Fatalf("SetParam: %v", err)
	}

	m.SetEnabled(0, true)
	m.SetEnabled(2, true)

	m.Process()

	out := m.Output(1).Data()
	for i, v := range out {
		if v != 4 {
			t.Fatalf("sample %d: got %v want 4 (two enabled voices at value 2)", i, v)
		}
	}
}

func TestMultiplierPreparesAllCopiesRegardlessOfEnabled(t *testing.T) {
	f := graph.NewFactory()
	f.Register("const", newConstProc)

	m, err := New("voices", 3, 1, buildVoice(f))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m.SetOutput(1, signal.New(1))

	if err := m.PrepareToProcess(); err != nil {
		t.Fatalf("PrepareToProcess with zero enabled copies: %v", err)
	}

	m.SetEnabled(1, true)
	m.Process()
}

func TestTemplateSentinelHasNoLiveCopy(t *testing.T) {
	f := graph.NewFactory()
	f.Register("const", newConstProc)
	m, err := New("voices", 2, 1, buildVoice(f))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c := m.Copy(Template); c != nil {
		t.Fatalf("Copy(Template) = %v, want nil", c)
	}
}
