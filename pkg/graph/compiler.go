package graph

import (
	"fmt"
	"sort"

	"github.com/dspgraph-audio/engine/internal/logging"
	"github.com/dspgraph-audio/engine/pkg/signal"
)

// compileSignal names one op-output slot's value and the op-index
// interval over which it must stay valid (spec §4.2 step 2-3, grounded on
// original_source/source/DSP/MLProcContainer.cpp's signal-naming pass).
// frameSize > 1 marks a multi-channel signal, which step 3 forbids from
// sharing a buffer with any other signal.
type compileSignal struct {
	key        string
	start, end int
	frameSize  int
	buf        *signal.Buffer
}

// sharedBuffer is one physical buffer shared by every compileSignal whose
// lifespan it has accepted, in insertion order (original_source's
// sharedBuffer, MLProcContainer.cpp:556). Every signal assigned to a
// sharedBuffer has the same frameSize.
type sharedBuffer struct {
	signals   []*compileSignal
	lastEnd   int
	frameSize int
}

// canFit reports whether a signal starting at start can share this
// buffer without overlapping the last signal already assigned to it.
// A frameSize mismatch never fits, even when the interval is free —
// step 3 treats differing channel counts as incompatible shapes, not
// just as a scheduling question.
func (sb *sharedBuffer) canFit(start, frameSize int) bool {
	if frameSize != sb.frameSize {
		return false
	}
	return len(sb.signals) == 0 || sb.lastEnd < start
}

// insert assigns sig to this buffer, extending lastEnd.
func (sb *sharedBuffer) insert(sig *compileSignal) {
	sb.signals = append(sb.signals, sig)
	sb.lastEnd = sig.end
	sb.frameSize = sig.frameSize
}

// compiledPlan is the materialized result of Compile: the linear op
// order to run each vector, the physical buffers the pack pass produced,
// and the dedicated copy buffers the published-input/output boundary
// needs (spec §4.1): a container's own input/output slots are owned by
// whoever wired it in (a parent container, or pkg/engine), and may be
// rebound to a different buffer at any time between Process calls, so
// the interior graph never reads/writes them directly — Process copies
// across the boundary every vector instead.
type compiledPlan struct {
	ops     []Proc
	buffers []*signal.Buffer
	nullBuf *signal.Buffer

	pubIn  []*signal.Buffer // one per publishedIn slot, in order
	pubOut []*signal.Buffer // one per publishedOut slot, in order
}

func slotKey(name string, idx int) string { return fmt.Sprintf("%s#%d", name, idx) }

// Compile resolves pipes and published I/O into a linear op order and a
// packed set of shared buffers (spec §4.2). It is idempotent: a
// container whose wiring has not changed since the last Compile is a
// no-op on the next PrepareToProcess.
//
// The pass is split exactly as the original does it: packSignals decides
// sharing by interval packing, materializeBuffers allocates the physical
// buffers, and a final wiring pass binds every op's slots. Keeping the
// three steps separate makes P3 (determinism) and P4 (first-fit
// optimality) independently testable.
func (c *Container) Compile() error {
	if c.ResampleRatio != 1.0 && c.ResampleHook == nil {
		return ErrFractionalBlockSize
	}

	for _, name := range c.order {
		if child, ok := c.children[name].(*Container); ok {
			if err := child.Compile(); err != nil {
				return err
			}
		}
	}

	idx := make(map[string]int, len(c.order))
	for i, n := range c.order {
		idx[n] = i
	}

	pipeByDst := make(map[string]pipe, len(c.pipes))
	for _, p := range c.pipes {
		if _, ok := idx[p.srcName]; !ok {
			return ErrConnectScope
		}
		if _, ok := idx[p.dstName]; !ok {
			return ErrConnectScope
		}
		pipeByDst[slotKey(p.dstName, p.dstIdx)] = p
	}

	pubInByDst := make(map[string]int, len(c.publishedIn))
	for i, ps := range c.publishedIn {
		pubInByDst[slotKey(ps.procName, ps.slotIdx)] = i
	}

	pubInBufs := make([]*signal.Buffer, len(c.publishedIn))
	for i := range pubInBufs {
		pubInBufs[i] = signal.New(1)
	}

	outSig, allSignals := c.planOutputSignals(idx, pipeByDst)

	lastIdx := len(c.order) - 1
	for _, ps := range c.publishedOut {
		key := slotKey(ps.procName, ps.slotIdx)
		if sig, ok := outSig[key]; ok && lastIdx > sig.end {
			sig.end = lastIdx
		}
	}

	buffers := packSignals(allSignals)
	materialized := materializeBuffers(buffers)

	nullBuf := signal.NewNull()
	ops := make([]Proc, len(c.order))
	for i, name := range c.order {
		op := c.children[name]
		ops[i] = op

		numIn := op.NumInputs()
		if op.HasVariableInputs() {
			for _, p := range c.pipes {
				if p.dstName == name && p.dstIdx > numIn {
					numIn = p.dstIdx
				}
			}
		}
		for k := 1; k <= numIn; k++ {
			dstKey := slotKey(name, k)
			if p, ok := pipeByDst[dstKey]; ok {
				sig := outSig[slotKey(p.srcName, p.srcIdx)]
				if err := op.SetInput(k, sig.buf); err != nil {
					return err
				}
				continue
			}
			if pi, ok := pubInByDst[dstKey]; ok {
				if err := op.SetInput(k, pubInBufs[pi]); err != nil {
					return err
				}
				continue
			}
			if err := op.SetInput(k, nullBuf); err != nil {
				return err
			}
		}

		for k := 1; k <= op.NumOutputs(); k++ {
			sig, ok := outSig[slotKey(name, k)]
			if !ok {
				continue
			}
			if err := op.SetOutput(k, sig.buf); err != nil {
				return err
			}
		}
	}

	pubOutBufs := make([]*signal.Buffer, len(c.publishedOut))
	for pi, ps := range c.publishedOut {
		sig := outSig[slotKey(ps.procName, ps.slotIdx)]
		pubOutBufs[pi] = sig.buf

		// A container owns its own output slot by default, exactly like
		// any leaf proc owns its output buffer, so Output() is already
		// valid the moment Compile finishes — a parent (or pkg/engine)
		// is still free to override it with SetOutput at any time
		// afterward; Process's copy-out step just targets whichever
		// buffer currently occupies the slot.
		if c.Output(pi+1) == nil {
			if err := c.SetOutput(pi+1, signal.New(sig.frameSize)); err != nil {
				return err
			}
		}
	}

	c.plan = &compiledPlan{
		ops:     ops,
		buffers: materialized,
		nullBuf: nullBuf,
		pubIn:   pubInBufs,
		pubOut:  pubOutBufs,
	}
	c.compiled = true
	logging.CompileDiagnostics(c.Name(), len(ops), len(materialized))
	return nil
}

// planOutputSignals names one compileSignal per op output slot, with a
// lifespan starting at the producing op's index and extended to the
// index of every op a pipe carries it to (spec §4.2 step 2).
func (c *Container) planOutputSignals(idx map[string]int, pipeByDst map[string]pipe) (map[string]*compileSignal, []*compileSignal) {
	outSig := make(map[string]*compileSignal)
	var all []*compileSignal

	for i, name := range c.order {
		op := c.children[name]
		for k := 1; k <= op.NumOutputs(); k++ {
			key := slotKey(name, k)
			sig := &compileSignal{key: key, start: i, end: i, frameSize: outputFrameSize(op, k)}
			outSig[key] = sig
			all = append(all, sig)
		}
	}

	for _, p := range c.pipes {
		srcKey := slotKey(p.srcName, p.srcIdx)
		sig, ok := outSig[srcKey]
		if !ok {
			continue
		}
		if dstIdx := idx[p.dstName]; dstIdx > sig.end {
			sig.end = dstIdx
		}
	}

	return outSig, all
}

// outputFrameSize asks op for output k's frame size via FrameSized,
// defaulting to 1 (spec §4.2 step 3) for procs that don't implement it.
func outputFrameSize(op Proc, k int) int {
	if fs, ok := op.(FrameSized); ok {
		if n := fs.OutputFrameSize(k); n > 0 {
			return n
		}
	}
	return 1
}

// packSignals assigns every signal to a sharedBuffer by first-fit over
// op-index intervals (spec §4.2 step 4, P4): signals are considered in
// (start, end, key) order for determinism (P3), and each goes to the
// first buffer of matching frameSize whose most recent occupant ends
// strictly before it begins, else a new buffer is opened. A frameSize>1
// signal never shares with anything else (step 3: multi-channel signals
// are never shareable) — it always opens its own dedicated buffer.
func packSignals(signals []*compileSignal) []*sharedBuffer {
	sorted := make([]*compileSignal, len(signals))
	copy(sorted, signals)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].start != sorted[j].start {
			return sorted[i].start < sorted[j].start
		}
		if sorted[i].end != sorted[j].end {
			return sorted[i].end < sorted[j].end
		}
		return sorted[i].key < sorted[j].key
	})

	var buffers []*sharedBuffer
	for _, sig := range sorted {
		if sig.frameSize != 1 {
			sb := &sharedBuffer{}
			sb.insert(sig)
			buffers = append(buffers, sb)
			continue
		}
		placed := false
		for _, sb := range buffers {
			if sb.canFit(sig.start, sig.frameSize) {
				sb.insert(sig)
				placed = true
				break
			}
		}
		if !placed {
			sb := &sharedBuffer{}
			sb.insert(sig)
			buffers = append(buffers, sb)
		}
	}
	return buffers
}

// materializeBuffers allocates exactly one physical signal.Buffer per
// sharedBuffer, sized to the frameSize every signal it accepted shares,
// and points every compileSignal at that same buffer (spec §4.2 step
// 5/6) — a separate pass from packSignals so the packing decision can be
// tested without allocating anything.
func materializeBuffers(buffers []*sharedBuffer) []*signal.Buffer {
	out := make([]*signal.Buffer, len(buffers))
	for i, sb := range buffers {
		buf := signal.New(sb.frameSize)
		out[i] = buf
		for _, sig := range sb.signals {
			sig.buf = buf
		}
	}
	return out
}
