// Package signal provides the fixed-rate numeric block that carries every
// wire in a compiled DSP graph.
package signal

import "math"

// Rate distinguishes a buffer's relationship to the container's sample clock.
type Rate int32

const (
	// Audio is a buffer that carries one sample per processing vector slot
	// at the container's configured sample rate.
	Audio Rate = iota
	// Timeless marks a signal that is constant through the whole graph
	// (e.g. a control value that does not vary across the vector).
	Timeless
	// Free marks a buffer that holds no live signal. No code in this
	// module assigns it: the compiler allocates every buffer with New and
	// keeps no pool of free entries for reuse.
	Free
)

// VectorSize is the number of samples processed per output, per op, per
// vector (kFloatsPerDSPVector in the spec).
const VectorSize = 64

// Buffer is the carrier on every wire in a compiled graph: a fixed-length
// block of float32 samples plus the metadata needed to interpret them.
//
// Buffer contents are valid only for the duration of one processing vector
// unless the buffer is explicitly owned by a delay line.
type Buffer struct {
	data      []float32
	rate      Rate
	frameSize int
	constant  bool
}

// New allocates a buffer sized for one vector of frameSize parallel channels.
// frameSize defaults to 1 when <= 0.
func New(frameSize int) *Buffer {
	if frameSize <= 0 {
		frameSize = 1
	}
	return &Buffer{
		data:      make([]float32, VectorSize*frameSize),
		rate:      Audio,
		frameSize: frameSize,
	}
}

// NewNull returns a buffer with zeroed, never-written contents: the shared
// sentinel bound to unconnected inputs and discarded outputs.
func NewNull() *Buffer {
	b := New(1)
	b.constant = true
	return b
}

// Data returns the underlying sample slice for frameSize == 1 buffers, or
// the raw interleaved slice for frameSize > 1 buffers.
func (b *Buffer) Data() []float32 { return b.data }

// FrameSize returns the number of parallel channels carried on this wire.
func (b *Buffer) FrameSize() int { return b.frameSize }

// Rate returns the buffer's rate sentinel.
func (b *Buffer) Rate() Rate { return b.rate }

// SetRate sets the buffer's rate sentinel. Buffers start at Audio; no
// code in this module changes it.
func (b *Buffer) SetRate(r Rate) { b.rate = r }

// IsConstant reports whether the whole vector equals its first sample.
func (b *Buffer) IsConstant() bool { return b.constant }

// SetConstant sets the constant flag. Container.Process in pkg/graph
// clears it on every op output before that op runs; a proc sets it again
// (e.g. through Fill) only if it actually produces a constant vector.
func (b *Buffer) SetConstant(c bool) { b.constant = c }

// Clear zeroes every sample — no allocation.
func (b *Buffer) Clear() {
	for i := range b.data {
		b.data[i] = 0
	}
	b.constant = true
}

// CopyFrom copies src into b in place, truncating to the shorter length.
func (b *Buffer) CopyFrom(src *Buffer) {
	copy(b.data, src.data)
	b.constant = src.constant
}

// Add adds src into b element-wise — no allocation.
func (b *Buffer) Add(src *Buffer) {
	n := len(b.data)
	if len(src.data) < n {
		n = len(src.data)
	}
	for i := 0; i < n; i++ {
		b.data[i] += src.data[i]
	}
	b.constant = false
}

// Scale multiplies every sample by alpha — no allocation.
func (b *Buffer) Scale(alpha float32) {
	for i := range b.data {
		b.data[i] *= alpha
	}
}

// Fill sets every sample to v and marks the buffer constant.
func (b *Buffer) Fill(v float32) {
	for i := range b.data {
		b.data[i] = v
	}
	b.constant = true
}

// FlushDenormals replaces any denormal or NaN/Inf sample with zero. Sine
// calls this on its own output at the end of Process, and pkg/engine's
// Step on any output vector holding NaN/Inf, rather than letting denormal
// stalls or NaNs propagate — see spec §7.
func FlushDenormals(data []float32) {
	const denormalThreshold = 1e-30
	for i, v := range data {
		av := v
		if av < 0 {
			av = -av
		}
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) || (v != 0 && av < denormalThreshold) {
			data[i] = 0
		}
	}
}

// HasNonFinite reports whether data contains a NaN or Inf sample, for the
// engine's optional out-of-band diagnostics (§4.5, §6 statistics block).
func HasNonFinite(data []float32) bool {
	for _, v := range data {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return true
		}
	}
	return false
}
