package graph

import "sync"

// Creator builds a fresh, unnamed instance of one proc class.
type Creator func() Proc

// Factory is a process-wide registry mapping class name to Creator,
// grounded on original_source/source/DSP/MLProc.h's per-class static
// registrar (MLProcInfo<T>/MLProcRegistryEntry): every proc class
// registers itself once, by class name, and containers create instances
// by name alone.
type Factory struct {
	mu       sync.RWMutex
	creators map[string]Creator
}

// defaultFactory is the process-wide registry used by Register and NewProc.
var defaultFactory = NewFactory()

// NewFactory returns an empty factory. Most callers use the package-level
// Register/NewProc against defaultFactory; a private Factory is useful in
// tests that must not pollute the global registry.
func NewFactory() *Factory {
	return &Factory{creators: make(map[string]Creator)}
}

// Register binds a class name to a Creator. Called from class packages'
// init() functions, matching the teacher's static-registration idiom.
func (f *Factory) Register(className string, c Creator) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creators[className] = c
}

// New creates a fresh, unnamed instance of className, or ErrNewProc if no
// creator is registered under that name.
func (f *Factory) New(className string) (Proc, error) {
	f.mu.RLock()
	c, ok := f.creators[className]
	f.mu.RUnlock()
	if !ok {
		return nil, ErrNewProc
	}
	return c(), nil
}

// Registered reports whether className has a registered creator.
func (f *Factory) Registered(className string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.creators[className]
	return ok
}

// Register binds className in the process-wide default factory.
func Register(className string, c Creator) { defaultFactory.Register(className, c) }

// NewProc creates an instance of className from the process-wide default
// factory.
func NewProc(className string) (Proc, error) { return defaultFactory.New(className) }
