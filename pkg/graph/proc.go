package graph

import "github.com/dspgraph-audio/engine/pkg/signal"

// ParamKind distinguishes the three published-parameter value shapes (§3).
type ParamKind int

const (
	ParamFloat ParamKind = iota
	ParamText
	ParamSignal
)

// ParamValue is the payload carried by SetParam. Exactly one field is
// meaningful, selected by Kind.
type ParamValue struct {
	Kind   ParamKind
	Float  float64
	Text   string
	Signal *signal.Buffer
}

// Float wraps a float64 as a ParamValue.
func Float(v float64) ParamValue { return ParamValue{Kind: ParamFloat, Float: v} }

// Text wraps a string as a ParamValue.
func Text(v string) ParamValue { return ParamValue{Kind: ParamText, Text: v} }

// Proc is one processing node: a class name identifying behaviour, an
// instance name unique within its parent, typed input/output slots, named
// parameters, and a process step (spec §3, §4.1).
//
// A Proc is created only by a factory keyed on class name (see Factory);
// construction attaches it to a Container and fixes its name permanently.
type Proc interface {
	// ClassName identifies the proc's behaviour, fixed at factory
	// registration time.
	ClassName() string

	// Name returns the instance name, fixed at creation and unique within
	// the parent container.
	Name() string

	// setName is called exactly once by the factory/container at creation.
	setName(name string)

	// Context returns the enclosing container. Nil only before the proc has
	// been added to a container.
	Context() *Container
	setContext(c *Container)

	// NumInputs / NumOutputs report the proc's current input/output slot
	// counts. For variable-I/O procs these grow when SetInput/SetOutput
	// binds a higher 1-based slot index.
	NumInputs() int
	NumOutputs() int
	HasVariableInputs() bool
	HasVariableOutputs() bool

	// Input / Output return the buffer currently bound to a slot, or nil
	// before compilation wires it.
	Input(index int) *signal.Buffer
	Output(index int) *signal.Buffer

	// SetInput / SetOutput rebind a slot's buffer. SetInput fails with
	// ErrInputOccupied if the slot already holds a non-null signal other
	// than the shared null input, and ErrInputBounds for an out-of-range
	// fixed-I/O index (variable-I/O procs grow their slot count instead).
	SetInput(index int, buf *signal.Buffer) error
	SetOutput(index int, buf *signal.Buffer) error

	// SetParam requests a parameter change; the proc samples it at the top
	// of its next Process, never mid-vector.
	SetParam(name string, value ParamValue) error

	// PrepareToProcess is called once after compilation, when rates and
	// vector sizes are known. Allocations for history/state belong here,
	// never in Process.
	PrepareToProcess() error

	// Process computes signal.VectorSize output samples per output from
	// the current vector of input samples. Must never allocate, never
	// panic, and must leave every output fully initialised.
	Process()

	// Clear resets history to an initial quiescent state.
	Clear()
}

// FrameSized is implemented by a proc whose output slot carries more
// than one parallel channel per vector (spec §4.2 step 3). The compiler
// asks every op for each output's frame size while planning signal
// lifespans; a proc that doesn't implement this interface is assumed to
// produce frameSize-1 outputs throughout.
type FrameSized interface {
	OutputFrameSize(index int) int
}

// BaseProc implements the bookkeeping shared by every Proc: naming,
// context, and fixed-size input/output slot storage. Concrete procs embed
// it and implement PrepareToProcess/Process/Clear/SetParam themselves.
type BaseProc struct {
	class   string
	name    string
	context *Container

	inputs       []*signal.Buffer
	outputs      []*signal.Buffer
	variableIn   bool
	variableOut  bool
}

// NewBaseProc constructs a BaseProc with numIn fixed inputs and numOut
// fixed outputs. Pass variableIn/variableOut true for classes whose slot
// counts grow on demand (addressed by 1-based index, grown by SetInput/SetOutput).
func NewBaseProc(class string, numIn, numOut int, variableIn, variableOut bool) BaseProc {
	return BaseProc{
		class:       class,
		inputs:      make([]*signal.Buffer, numIn),
		outputs:     make([]*signal.Buffer, numOut),
		variableIn:  variableIn,
		variableOut: variableOut,
	}
}

func (b *BaseProc) ClassName() string          { return b.class }
func (b *BaseProc) Name() string               { return b.name }
func (b *BaseProc) setName(name string)        { b.name = name }
func (b *BaseProc) Context() *Container        { return b.context }
func (b *BaseProc) setContext(c *Container)     { b.context = c }
func (b *BaseProc) NumInputs() int             { return len(b.inputs) }
func (b *BaseProc) NumOutputs() int            { return len(b.outputs) }
func (b *BaseProc) HasVariableInputs() bool    { return b.variableIn }
func (b *BaseProc) HasVariableOutputs() bool   { return b.variableOut }

func (b *BaseProc) Input(index int) *signal.Buffer {
	if index < 1 || index > len(b.inputs) {
		return nil
	}
	return b.inputs[index-1]
}

func (b *BaseProc) Output(index int) *signal.Buffer {
	if index < 1 || index > len(b.outputs) {
		return nil
	}
	return b.outputs[index-1]
}

func (b *BaseProc) SetInput(index int, buf *signal.Buffer) error {
	if b.variableIn && index > len(b.inputs) {
		grown := make([]*signal.Buffer, index)
		copy(grown, b.inputs)
		b.inputs = grown
	}
	if index < 1 || index > len(b.inputs) {
		return ErrInputBounds
	}
	if cur := b.inputs[index-1]; cur != nil && cur != buf {
		return ErrInputOccupied
	}
	b.inputs[index-1] = buf
	return nil
}

func (b *BaseProc) SetOutput(index int, buf *signal.Buffer) error {
	if b.variableOut && index > len(b.outputs) {
		grown := make([]*signal.Buffer, index)
		copy(grown, b.outputs)
		b.outputs = grown
	}
	if index < 1 || index > len(b.outputs) {
		return ErrInputBounds
	}
	b.outputs[index-1] = buf
	return nil
}

// resizeInputs/resizeOutputs are used by Container.PublishInput and
// PublishOutput to size a container's own slots to its published
// inputs/outputs.
func (b *BaseProc) resizeInputs(n int) {
	if n == len(b.inputs) {
		return
	}
	grown := make([]*signal.Buffer, n)
	copy(grown, b.inputs)
	b.inputs = grown
}

func (b *BaseProc) resizeOutputs(n int) {
	if n == len(b.outputs) {
		return
	}
	grown := make([]*signal.Buffer, n)
	copy(grown, b.outputs)
	b.outputs = grown
}
