// Package logging provides the process-wide structured logger used for
// construction-time and compile-time diagnostics only — never called
// from inside Proc.Process, which must stay allocation- and
// syscall-free (spec §5).
package logging

import "go.uber.org/zap"

var logger *zap.Logger

func init() {
	l, err := zap.NewProduction()
	if err != nil {
		l = zap.NewNop()
	}
	logger = l
}

// L returns the process-wide logger.
func L() *zap.Logger { return logger }

// SetLogger replaces the process-wide logger, e.g. with a development
// logger in examples or a Nop logger in tests.
func SetLogger(l *zap.Logger) { logger = l }

// CompileDiagnostics logs the shape of a just-compiled container:
// number of ops and number of packed buffers, for offline inspection of
// P4 first-fit behavior.
func CompileDiagnostics(containerName string, numOps, numBuffers int) {
	logger.Info("graph compiled",
		zap.String("container", containerName),
		zap.Int("ops", numOps),
		zap.Int("buffers", numBuffers),
	)
}

// VoiceSteal logs a voice-stealing decision made by the router.
func VoiceSteal(voice int, stolenNote, newNote uint8) {
	logger.Info("voice stolen",
		zap.Int("voice", voice),
		zap.Uint8("stolenNote", stolenNote),
		zap.Uint8("newNote", newNote),
	)
}

// EngineLifecycle logs engine start/stop/prepare transitions.
func EngineLifecycle(event string, sampleRate float64, vectorSize int) {
	logger.Info("engine "+event,
		zap.Float64("sampleRate", sampleRate),
		zap.Int("vectorSize", vectorSize),
	)
}
