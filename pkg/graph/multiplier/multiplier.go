// Package multiplier implements voice multiplication: N structurally
// identical copies of a template container, processed and summed as one
// proc (spec §4.3), grounded on
// original_source/source/DSP/MLMultProxy.cpp's MLMultProxy/MLMultiProc.
package multiplier

import (
	"github.com/dspgraph-audio/engine/pkg/graph"
)

// Template is the sentinel copy index addressing the structural template
// itself rather than one of its copies, matching MLMultProxy's use of -1
// to mean "the template, not a running copy".
const Template = -1

// Builder constructs one fresh copy of the voice subgraph. Called once
// per copy by SetCopies; must return a container wired identically each
// time (same published inputs/outputs/params), since Multiplier assumes
// every copy's shape matches the template.
type Builder func(copyIndex int) (*graph.Container, error)

// Multiplier is a Proc that owns N copies of a template subgraph, built
// by Builder, broadcasts SetParam to every copy, and sums the outputs of
// only the currently enabled copies into its own published outputs.
type Multiplier struct {
	graph.BaseProc

	build   Builder
	copies  []*graph.Container
	enabled []bool

	numOutputs int
}

// New builds a Multiplier with n copies from build, each exposing
// numOutputs published outputs. Copies are built immediately so
// PrepareToProcess can always touch every one of them regardless of how
// many are later enabled (MLMultiProc::prepareToProcess's rule, and
// spec's P5: idle voices cost nothing in Process but still occupy their
// slot structurally).
func New(className string, n, numOutputs int, build Builder) (*Multiplier, error) {
	m := &Multiplier{
		BaseProc:   graph.NewBaseProc(className, 0, numOutputs, true, false),
		build:      build,
		numOutputs: numOutputs,
	}
	if err := m.SetCopies(n); err != nil {
		return nil, err
	}
	return m, nil
}

// SetCopies rebuilds the copy set to exactly n copies, each freshly
// built from the template Builder. All copies start disabled.
func (m *Multiplier) SetCopies(n int) error {
	copies := make([]*graph.Container, n)
	enabled := make([]bool, n)
	for i := 0; i < n; i++ {
		c, err := m.build(i)
		if err != nil {
			return err
		}
		copies[i] = c
	}
	m.copies = copies
	m.enabled = enabled
	return nil
}

// NumCopies returns the current copy count.
func (m *Multiplier) NumCopies() int { return len(m.copies) }

// Copy returns copy index's container, or nil when index == Template or
// is out of range — there is no live container for the template itself,
// only the Builder that produced it.
func (m *Multiplier) Copy(index int) *graph.Container {
	if index == Template || index < 0 || index >= len(m.copies) {
		return nil
	}
	return m.copies[index]
}

// SetEnabled marks copy index enabled or disabled for the next Process.
// Disabling a copy does not release or reallocate its buffers — only
// Process's summation skips it, per P5.
func (m *Multiplier) SetEnabled(index int, on bool) error {
	if index < 0 || index >= len(m.enabled) {
		return graph.ErrBadIndex
	}
	m.enabled[index] = on
	return nil
}

// Enabled reports whether copy index is currently enabled.
func (m *Multiplier) Enabled(index int) bool {
	if index < 0 || index >= len(m.enabled) {
		return false
	}
	return m.enabled[index]
}

// EnabledCount returns how many copies are currently enabled.
func (m *Multiplier) EnabledCount() int {
	n := 0
	for _, e := range m.enabled {
		if e {
			n++
		}
	}
	return n
}

// SetParam broadcasts to every copy, matching MLMultProxy's broadcast
// setParam rule: every copy, enabled or not, tracks the same control
// value so that enabling it later needs no catch-up.
func (m *Multiplier) SetParam(name string, v graph.ParamValue) error {
	var firstErr error
	for _, c := range m.copies {
		if err := c.SetParam(name, v); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SetCopyParam sets a param on exactly one copy, bypassing the
// broadcast — used by the event router to give each voice its own pitch
// while shared controls (e.g. filter cutoff) still broadcast.
func (m *Multiplier) SetCopyParam(index int, name string, v graph.ParamValue) error {
	c := m.Copy(index)
	if c == nil {
		return graph.ErrBadIndex
	}
	return c.SetParam(name, v)
}

// PrepareToProcess prepares every copy unconditionally, regardless of
// which are enabled — the rule carried over from MLMultiProc.
func (m *Multiplier) PrepareToProcess() error {
	for _, c := range m.copies {
		if err := c.PrepareToProcess(); err != nil {
			return err
		}
	}
	return nil
}

// Process runs every enabled copy and sums each output 1..numOutputs
// into the multiplier's own outputs. Disabled copies are skipped
// entirely — the cost of an idle voice is zero vector work (P5).
func (m *Multiplier) Process() {
	for k := 1; k <= m.numOutputs; k++ {
		out := m.Output(k)
		if out == nil {
			continue
		}
		out.Clear()
	}
	for i, c := range m.copies {
		if !m.enabled[i] {
			continue
		}
		c.Process()
		for k := 1; k <= m.numOutputs; k++ {
			out := m.Output(k)
			src := c.Output(k)
			if out == nil || src == nil {
				continue
			}
			out.Add(src)
		}
	}
}

// Clear resets every copy's history, enabled or not.
func (m *Multiplier) Clear() {
	for _, c := range m.copies {
		c.Clear()
	}
}

var _ graph.Proc = (*Multiplier)(nil)
