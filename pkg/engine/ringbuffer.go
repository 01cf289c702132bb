package engine

import "sync/atomic"

// RingBuffer is a lock-free, power-of-2-sized circular buffer absorbing
// the mismatch between a host's arbitrary audio block size and the
// engine's fixed processing vector size (spec §4.5), adapted from the
// teacher's pkg/dsp/buffer.WriteAheadBuffer with the GC write-ahead
// latency enforcement removed — the engine driver's job is block-size
// decoupling, not jitter absorption, so maintainDelay has no analogue
// here; one producer (the host callback or the engine) and one
// consumer (the other side) is all either Write or Read assumes.
type RingBuffer struct {
	data     []float32
	readPos  uint64
	writePos uint64
	size     uint32
	mask     uint32

	underruns uint64
	overruns  uint64
}

// NewRingBuffer returns a buffer sized to the next power of 2 at or
// above minSize samples.
func NewRingBuffer(minSize int) *RingBuffer {
	size := nextPowerOf2(uint32(minSize))
	return &RingBuffer{
		data: make([]float32, size),
		size: size,
		mask: size - 1,
	}
}

// Write copies samples into the buffer, returning the number actually
// written — fewer than len(samples) if the buffer is full (an overrun,
// counted but not an error: the caller decides how to react).
func (b *RingBuffer) Write(samples []float32) int {
	if len(samples) == 0 {
		return 0
	}
	writePos := atomic.LoadUint64(&b.writePos)
	readPos := atomic.LoadUint64(&b.readPos)

	available := b.availableSpace(readPos, writePos)
	n := len(samples)
	if available < uint32(n) {
		atomic.AddUint64(&b.overruns, 1)
		n = int(available)
	}

	remaining := n
	srcOffset := 0
	for remaining > 0 {
		dstIdx := uint32(writePos) & b.mask
		copySize := remaining
		if dstIdx+uint32(copySize) > b.size {
			copySize = int(b.size - dstIdx)
		}
		copy(b.data[dstIdx:dstIdx+uint32(copySize)], samples[srcOffset:srcOffset+copySize])
		srcOffset += copySize
		remaining -= copySize
		writePos += uint64(copySize)
	}
	atomic.StoreUint64(&b.writePos, writePos)
	return n
}

// Read fills output with samples from the buffer, zero-padding and
// counting an underrun if fewer are available than requested.
func (b *RingBuffer) Read(output []float32) int {
	if len(output) == 0 {
		return 0
	}
	readPos := atomic.LoadUint64(&b.readPos)
	writePos := atomic.LoadUint64(&b.writePos)

	available := b.availableData(readPos, writePos)
	toRead := len(output)
	if available < uint32(toRead) {
		toRead = int(available)
		atomic.AddUint64(&b.underruns, 1)
	}

	remaining := toRead
	dstOffset := 0
	for remaining > 0 {
		srcIdx := uint32(readPos) & b.mask
		copySize := remaining
		if srcIdx+uint32(copySize) > b.size {
			copySize = int(b.size - srcIdx)
		}
		copy(output[dstOffset:dstOffset+copySize], b.data[srcIdx:srcIdx+uint32(copySize)])
		dstOffset += copySize
		remaining -= copySize
		readPos += uint64(copySize)
	}
	atomic.StoreUint64(&b.readPos, readPos)

	for i := toRead; i < len(output); i++ {
		output[i] = 0
	}
	return toRead
}

// Available returns how many samples are currently readable.
func (b *RingBuffer) Available() int {
	return int(b.availableData(atomic.LoadUint64(&b.readPos), atomic.LoadUint64(&b.writePos)))
}

// Stats returns the underrun/overrun counters for the engine's optional
// statistics block (spec §6).
func (b *RingBuffer) Stats() (underruns, overruns uint64) {
	return atomic.LoadUint64(&b.underruns), atomic.LoadUint64(&b.overruns)
}

func (b *RingBuffer) availableSpace(readPos, writePos uint64) uint32 {
	used := writePos - readPos
	if used >= uint64(b.size) {
		return 0
	}
	return b.size - uint32(used)
}

func (b *RingBuffer) availableData(readPos, writePos uint64) uint32 {
	if writePos < readPos {
		return 0
	}
	available := writePos - readPos
	if available > uint64(b.size) {
		return b.size
	}
	return uint32(available)
}

func nextPowerOf2(n uint32) uint32 {
	if n == 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}
