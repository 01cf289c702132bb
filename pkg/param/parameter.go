// Package param provides the atomic-valued parameter storage procs use
// to receive SetParam calls from any thread while Process reads them
// lock-free, adapted from the teacher's pkg/framework/param.Parameter.
package param

import (
	"fmt"
	"math"
	"strconv"
	"sync/atomic"
)

// Parameter is a single named, ranged control value stored as bits in a
// uint64 so Get/Set never block the audio thread against a
// concurrent writer.
type Parameter struct {
	Name         string
	Min          float64
	Max          float64
	DefaultValue float64

	bits uint64

	formatFunc func(float64) string
	parseFunc  func(string) (float64, error)
}

// New returns a Parameter initialized to defaultValue.
func New(name string, min, max, defaultValue float64) *Parameter {
	p := &Parameter{Name: name, Min: min, Max: max, DefaultValue: defaultValue}
	p.Set(defaultValue)
	return p
}

// Get returns the current plain value. Safe to call from any thread.
func (p *Parameter) Get() float64 {
	return math.Float64frombits(atomic.LoadUint64(&p.bits))
}

// Set stores a new plain value, clamped to [Min, Max]. Safe to call
// from any thread; Process only ever reads via Get, never blocks.
func (p *Parameter) Set(value float64) {
	if value < p.Min {
		value = p.Min
	} else if value > p.Max {
		value = p.Max
	}
	atomic.StoreUint64(&p.bits, math.Float64bits(value))
}

// Normalized returns the current value mapped to [0, 1].
func (p *Parameter) Normalized() float64 {
	if p.Max <= p.Min {
		return 0
	}
	return (p.Get() - p.Min) / (p.Max - p.Min)
}

// SetNormalized sets the value from a [0, 1] input.
func (p *Parameter) SetNormalized(n float64) {
	if n < 0 {
		n = 0
	} else if n > 1 {
		n = 1
	}
	p.Set(p.Min + n*(p.Max-p.Min))
}

// SetFormatter installs custom display formatting/parsing, used by host
// UIs and debug logging, never by Process.
func (p *Parameter) SetFormatter(format func(float64) string, parse func(string) (float64, error)) {
	p.formatFunc = format
	p.parseFunc = parse
}

// String formats the current value for display.
func (p *Parameter) String() string {
	v := p.Get()
	if p.formatFunc != nil {
		return p.formatFunc(v)
	}
	return fmt.Sprintf("%.3f", v)
}

// Parse converts a display string to a plain value and applies it.
func (p *Parameter) Parse(s string) error {
	var v float64
	var err error
	if p.parseFunc != nil {
		v, err = p.parseFunc(s)
	} else {
		v, err = strconv.ParseFloat(s, 64)
	}
	if err != nil {
		return err
	}
	p.Set(v)
	return nil
}
