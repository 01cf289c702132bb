// Package engine is the outermost driver that turns a compiled graph
// into something a host audio callback can push/pull arbitrary block
// sizes through (spec §4.5). It owns no knowledge of events or MIDI —
// that ingestion boundary lives one layer up, in the caller (see
// examples/livesynth) — only the fixed-vector graph and the ring
// buffers absorbing the host's block size.
package engine

import (
	"sync/atomic"

	"github.com/dspgraph-audio/engine/pkg/graph"
	"github.com/dspgraph-audio/engine/pkg/signal"

	"github.com/dspgraph-audio/engine/internal/logging"
)

// Root drives one compiled Container at signal.VectorSize per step,
// decoupling it from whatever block size the host audio callback uses.
type Root struct {
	root *graph.Container

	sampleRate float64
	inRings    []*RingBuffer
	outRings   []*RingBuffer

	inScratch  []*signal.Buffer
	outScratch []*signal.Buffer

	vectorCount    uint64
	nonFiniteCount uint64
}

// New wraps root. ringSize is the minimum size (in samples) of each
// channel's ring buffer — rounded up to a power of 2.
func New(root *graph.Container, ringSize int) *Root {
	numIn := root.NumInputs()
	numOut := root.NumOutputs()

	r := &Root{
		root:       root,
		inRings:    make([]*RingBuffer, numIn),
		outRings:   make([]*RingBuffer, numOut),
		inScratch:  make([]*signal.Buffer, numIn),
		outScratch: make([]*signal.Buffer, numOut),
	}
	for i := range r.inRings {
		r.inRings[i] = NewRingBuffer(ringSize)
		r.inScratch[i] = signal.New(1)
	}
	for i := range r.outRings {
		r.outRings[i] = NewRingBuffer(ringSize)
		r.outScratch[i] = signal.New(1)
	}
	return r
}

// Prepare sets sampleRate on the root container, which forces a fresh
// Compile, then prepares it. Must be called once before the first PushInput/PullOutput.
func (r *Root) Prepare(sampleRate float64) error {
	r.sampleRate = sampleRate
	r.root.SetSampleRate(sampleRate)
	if err := r.root.PrepareToProcess(); err != nil {
		return err
	}
	logging.EngineLifecycle("prepared", sampleRate, signal.VectorSize)
	return nil
}

// PushInput writes host-supplied samples for input channel ch into its
// ring buffer, returning how many were accepted (fewer than len(samples)
// means the ring overran and the host should slow down or enlarge it).
func (r *Root) PushInput(ch int, samples []float32) int {
	if ch < 0 || ch >= len(r.inRings) {
		return 0
	}
	return r.inRings[ch].Write(samples)
}

// PullOutput reads up to len(out) samples already produced for output
// channel ch, running additional vectors through the graph as needed to
// satisfy the request. It only ever runs whole vectors (spec §4.5):
// samples a vector produces beyond the request stay in the output ring
// for the next call. If the inputs cannot supply another whole vector
// before the request is met, the rest of out is zero-filled and the
// return value counts only the samples actually read.
func (r *Root) PullOutput(ch int, out []float32) int {
	if ch < 0 || ch >= len(r.outRings) {
		return 0
	}
	for r.outRings[ch].Available() < len(out) {
		if !r.stepIfInputAvailable() {
			break
		}
	}
	return r.outRings[ch].Read(out)
}

// stepIfInputAvailable runs exactly one vector through the graph if
// every input ring has at least signal.VectorSize samples ready (or
// there are no inputs at all), returning whether a vector actually ran.
func (r *Root) stepIfInputAvailable() bool {
	for _, in := range r.inRings {
		if in.Available() < signal.VectorSize {
			return false
		}
	}
	r.Step()
	return true
}

// Step runs exactly one processing vector: pulls VectorSize samples per
// input channel, calls the compiled graph's Process, and pushes
// VectorSize samples per output channel. Safe to call directly by a
// caller that manages its own pacing (e.g. an offline renderer).
func (r *Root) Step() {
	for i, in := range r.inRings {
		in.Read(r.inScratch[i].Data())
		r.root.SetInput(i+1, r.inScratch[i])
	}
	for i, out := range r.outScratch {
		r.root.SetOutput(i+1, out)
	}

	r.root.Process()
	atomic.AddUint64(&r.vectorCount, 1)

	for i, out := range r.outScratch {
		if signal.HasNonFinite(out.Data()) {
			signal.FlushDenormals(out.Data())
			atomic.AddUint64(&r.nonFiniteCount, 1)
		}
		r.outRings[i].Write(out.Data())
	}
}

// VectorCount returns the total number of vectors processed so far.
func (r *Root) VectorCount() uint64 { return atomic.LoadUint64(&r.vectorCount) }

// NonFiniteCount returns how many vectors needed a NaN/Inf flush.
func (r *Root) NonFiniteCount() uint64 { return atomic.LoadUint64(&r.nonFiniteCount) }

// ProcCount returns the number of procs in the root container's
// compiled op list — 0 before the first Prepare.
func (r *Root) ProcCount() int {
	return r.root.OpCount()
}

// RingStats sums underrun/overrun counters across every input and
// output ring, for the statistics block.
func (r *Root) RingStats() (underruns, overruns uint64) {
	for _, ring := range r.inRings {
		u, o := ring.Stats()
		underruns += u
		overruns += o
	}
	for _, ring := range r.outRings {
		u, o := ring.Stats()
		underruns += u
		overruns += o
	}
	return
}
