package graph

import "math"

// Warp selects the curve a PublishedParam applies between its public
// range and the plain value it forwards to the target proc (spec §3's
// published-parameter projection).
type Warp int

const (
	// WarpLinear forwards the value unchanged, clamped to [Low, High].
	WarpLinear Warp = iota
	// WarpExponential maps a linear public range onto an exponential
	// target range; Low and High must both be strictly positive.
	WarpExponential
	// WarpBipolarExponential mirrors WarpExponential around zero, for
	// params whose public range spans negative and positive values
	// symmetrically (e.g. a pan or detune control).
	WarpBipolarExponential
)

// PublishedParam describes one container-level parameter: its public
// range, its curve, and the child proc/param it ultimately targets.
type PublishedParam struct {
	Low, High float64
	Default   float64
	Warp      Warp
	// ZeroThreshold collapses any magnitude below this to exact zero
	// after warping — avoids denormal target values from an exponential
	// curve's tail.
	ZeroThreshold float64

	procName  string
	paramName string
}

// NewPublishedParam builds a PublishedParam with WarpLinear and no
// zero threshold; set fields directly for other warps.
func NewPublishedParam(low, high, def float64) *PublishedParam {
	return &PublishedParam{Low: low, High: high, Default: def, Warp: WarpLinear}
}

// project applies the param's warp to an incoming ParamValue, returning
// the value to forward to the target proc's own SetParam.
func (p *PublishedParam) project(v ParamValue) ParamValue {
	if v.Kind != ParamFloat {
		return v
	}
	x := clamp(v.Float, p.Low, p.High)
	var y float64
	switch p.Warp {
	case WarpExponential:
		y = warpExponential(x, p.Low, p.High)
	case WarpBipolarExponential:
		y = warpBipolarExponential(x, p.Low, p.High)
	default:
		y = x
	}
	if p.ZeroThreshold > 0 && math.Abs(y) < p.ZeroThreshold {
		y = 0
	}
	return Float(y)
}

func clamp(x, low, high float64) float64 {
	if x < low {
		return low
	}
	if x > high {
		return high
	}
	return x
}

// warpExponential maps x linearly positioned in [low, high] onto the
// exponential curve between low and high (both must be > 0).
func warpExponential(x, low, high float64) float64 {
	if low <= 0 || high <= 0 || high == low {
		return x
	}
	t := (x - low) / (high - low)
	return low * math.Pow(high/low, t)
}

// warpBipolarExponential mirrors warpExponential around zero for a
// symmetric range [-high, high].
func warpBipolarExponential(x, low, high float64) float64 {
	mag := math.Abs(high)
	if mag == 0 {
		return 0
	}
	sign := 1.0
	if x < 0 {
		sign = -1.0
	}
	t := math.Abs(x) / mag
	floor := mag * 0.001
	return sign * floor * math.Pow(mag/floor, t)
}
