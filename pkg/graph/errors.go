package graph

import "errors"

// Typed construction, wiring, and preparation errors (spec §7). Run-time
// errors inside Process are never raised — see signal.FlushDenormals and
// pkg/engine/stats for the out-of-band alternative.
var (
	ErrMem                 = errors.New("graph: allocation failed")
	ErrInputBounds         = errors.New("graph: input index out of bounds")
	ErrInputOccupied       = errors.New("graph: input slot already connected")
	ErrNoInput             = errors.New("graph: required input is unconnected")
	ErrInputMismatch       = errors.New("graph: input frame size mismatch")
	ErrFractionalBlockSize = errors.New("graph: vector size is not integer-compatible with the resample ratio")
	ErrConnectScope        = errors.New("graph: pipe endpoints live in different containers")
	ErrNameInUse           = errors.New("graph: name already in use in this container")
	ErrHeadNotContainer    = errors.New("graph: path traversed a non-container proc")
	ErrNameNotFound        = errors.New("graph: name not found")
	ErrNewProc             = errors.New("graph: unknown proc class")
	ErrBadIndex            = errors.New("graph: bad index")
	ErrUnknown             = errors.New("graph: unknown error")
)
