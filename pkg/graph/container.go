package graph

import "github.com/dspgraph-audio/engine/pkg/signal"

// Container is a named group of procs wired together by pipes, itself a
// Proc so it can be nested inside another container (spec §3's recursive
// composition rule). A Container's own inputs/outputs are "published"
// from some interior proc's slot; its own params are published from some
// interior proc's param.
type Container struct {
	BaseProc

	order    []string       // child insertion order, authoritative for linearization
	children map[string]Proc

	pipes []pipe

	publishedIn  []publishedSlot
	publishedOut []publishedSlot
	params       map[string]*PublishedParam

	// ResampleRatio is non-unity when this container's interior runs at a
	// different vector rate than its parent (spec §4.3's sample-rate
	// conversion hook). 1.0 means no conversion.
	ResampleRatio float64
	// ResampleHook is the up/down converter a collaborator supplies for a
	// non-unity ResampleRatio. Compile returns ErrFractionalBlockSize if a
	// non-unity ratio has no hook; otherwise it only checks that the hook
	// is set. Neither Compile nor Process calls it, so no conversion takes
	// place in this package.
	ResampleHook func(dst, src *signal.Buffer, ratio float64)

	sampleRate float64

	compiled bool
	plan     *compiledPlan

	factory *Factory
}

// publishedSlot names one published input or output: an alias visible
// from the parent container, bound to one interior proc's numbered slot.
type publishedSlot struct {
	alias    string
	procName string
	slotIdx  int
}

// NewContainer creates an empty, unnamed container. Use AddContainer to
// nest it, or treat it as the engine root (see pkg/engine).
func NewContainer(className string) *Container {
	return NewContainerWithFactory(className, defaultFactory)
}

// NewContainerWithFactory is NewContainer against a private factory,
// useful in tests that must not touch the process-wide registry.
func NewContainerWithFactory(className string, f *Factory) *Container {
	c := &Container{
		BaseProc:      NewBaseProc(className, 0, 0, true, true),
		children:      make(map[string]Proc),
		params:        make(map[string]*PublishedParam),
		ResampleRatio: 1.0,
		sampleRate:    44100,
		factory:       f,
	}
	return c
}

// AddProc creates a new instance of className via the container's
// factory, names it, attaches it as a child, and returns it.
func (c *Container) AddProc(name, className string) (Proc, error) {
	if _, exists := c.children[name]; exists {
		return nil, ErrNameInUse
	}
	p, err := c.factory.New(className)
	if err != nil {
		return nil, err
	}
	return c.adopt(name, p)
}

// AddContainer nests an already-built child container under name.
func (c *Container) AddContainer(name string, child *Container) error {
	if child.factory == nil {
		child.factory = c.factory
	}
	return c.AddChild(name, child)
}

// AddChild adopts an already-built Proc — a Container, a Multiplier, or
// any other implementation outside this package's factory — as a direct
// child under name. AddProc and AddContainer are thin wrappers around
// this for the common cases of "build by class name" and "nest a
// container"; AddChild itself is how anything else (e.g.
// pkg/graph/multiplier.Multiplier) joins a graph.
func (c *Container) AddChild(name string, p Proc) error {
	if _, exists := c.children[name]; exists {
		return ErrNameInUse
	}
	_, err := c.adopt(name, p)
	return err
}

func (c *Container) adopt(name string, p Proc) (Proc, error) {
	type namer interface{ setName(string) }
	type contexter interface{ setContext(*Container) }
	p.(namer).setName(name)
	p.(contexter).setContext(c)
	c.children[name] = p
	c.order = append(c.order, name)
	c.compiled = false
	return p, nil
}

// Proc looks up a direct child by name.
func (c *Container) Proc(name string) (Proc, error) {
	p, ok := c.children[name]
	if !ok {
		return nil, ErrNameNotFound
	}
	return p, nil
}

// Connect wires srcName's output srcIdx to dstName's input dstIdx. Both
// names must resolve to direct children of this container — cross-scope
// pipes are rejected with ErrConnectScope, matching spec §3's pipe scope
// rule.
func (c *Container) Connect(srcName string, srcIdx int, dstName string, dstIdx int) error {
	if _, ok := c.children[srcName]; !ok {
		return ErrConnectScope
	}
	if _, ok := c.children[dstName]; !ok {
		return ErrConnectScope
	}
	c.pipes = append(c.pipes, pipe{srcName: srcName, srcIdx: srcIdx, dstName: dstName, dstIdx: dstIdx})
	c.compiled = false
	return nil
}

// PublishInput exposes childName's input slotIdx as this container's own
// input named alias.
func (c *Container) PublishInput(alias, childName string, slotIdx int) error {
	if _, ok := c.children[childName]; !ok {
		return ErrNameNotFound
	}
	c.publishedIn = append(c.publishedIn, publishedSlot{alias: alias, procName: childName, slotIdx: slotIdx})
	c.resizeInputs(len(c.publishedIn))
	c.compiled = false
	return nil
}

// PublishOutput exposes childName's output slotIdx as this container's
// own output named alias.
func (c *Container) PublishOutput(alias, childName string, slotIdx int) error {
	if _, ok := c.children[childName]; !ok {
		return ErrNameNotFound
	}
	c.publishedOut = append(c.publishedOut, publishedSlot{alias: alias, procName: childName, slotIdx: slotIdx})
	c.resizeOutputs(len(c.publishedOut))
	c.compiled = false
	return nil
}

// PublishParam exposes childName's parameter paramName as this
// container's own parameter named alias, with the given range/warp.
func (c *Container) PublishParam(alias, childName, paramName string, p *PublishedParam) error {
	if _, ok := c.children[childName]; !ok {
		return ErrNameNotFound
	}
	p.procName = childName
	p.paramName = paramName
	c.params[alias] = p
	return nil
}

// SetParam forwards to the published param's target child proc, applying
// its range/warp/projection (spec §3's published-parameter rule).
func (c *Container) SetParam(name string, value ParamValue) error {
	p, ok := c.params[name]
	if !ok {
		return ErrNameNotFound
	}
	target, ok := c.children[p.procName]
	if !ok {
		return ErrNameNotFound
	}
	return target.SetParam(p.paramName, p.project(value))
}

// PrepareToProcess first materializes this container's compiled plan if
// Compile has not already run, then recursively prepares every child. The
// original's MLMultiProc.prepareToProcess rule — touch every child
// regardless of which are currently enabled — applies transitively here:
// preparation never depends on runtime enable state.
func (c *Container) PrepareToProcess() error {
	if !c.compiled {
		if err := c.Compile(); err != nil {
			return err
		}
	}
	for _, name := range c.order {
		if err := c.children[name].PrepareToProcess(); err != nil {
			return err
		}
	}
	return nil
}

// Process runs one vector (spec §4.1): published inputs are copied from
// the container's own (externally-owned) input slots into the plan's
// dedicated internal buffers, every op in the compiled order runs in
// turn, and published outputs are copied from their interior signal
// back out to the container's own output slots. The copy at each
// boundary is what lets a parent container (or pkg/engine) refill this
// container's input slots or rebind its output slots to a fresh
// destination between Process calls without the interior wiring ever
// needing to change.
func (c *Container) Process() {
	if c.plan == nil {
		return
	}

	for i, buf := range c.plan.pubIn {
		if src := c.Input(i + 1); src != nil {
			buf.CopyFrom(src)
		} else {
			buf.Clear()
		}
	}

	for _, op := range c.plan.ops {
		// Every output this op is about to (re)write starts this vector
		// with its constant flag cleared, so a shared buffer never
		// inherits a stale "constant" flag left by whatever signal
		// occupied it last (spec §4.1) — ops that do produce a constant
		// vector (e.g. Constant's Fill) set it again themselves.
		for k := 1; k <= op.NumOutputs(); k++ {
			if buf := op.Output(k); buf != nil {
				buf.SetConstant(false)
			}
		}
		op.Process()
	}

	for i, buf := range c.plan.pubOut {
		if dst := c.Output(i + 1); dst != nil {
			dst.CopyFrom(buf)
		}
	}
}

// Clear resets every child's history to quiescent.
func (c *Container) Clear() {
	for _, name := range c.order {
		c.children[name].Clear()
	}
}

// OpCount returns the number of ops in the compiled plan, or 0 before
// the first successful Compile.
func (c *Container) OpCount() int {
	if c.plan == nil {
		return 0
	}
	return len(c.plan.ops)
}

// SampleRate returns the container's configured sample rate.
func (c *Container) SampleRate() float64 { return c.sampleRate }

// SetSampleRate sets the sample rate used by PrepareToProcess. Must be
// called before PrepareToProcess; changing it afterward requires a fresh
// Compile + PrepareToProcess pass.
func (c *Container) SetSampleRate(hz float64) {
	c.sampleRate = hz
	c.compiled = false
}
