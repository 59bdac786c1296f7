package midlet

import (
	"fmt"
	"runtime/debug"
	"slices"
	"sync"

	"midp/hal/gles"
	"midp/internal/logging"
	"midp/lcdui"
	"midp/media"
)

// MIDlet is a running application.
type MIDlet interface {
	StartApp() error
}

// Destroyer is implemented by MIDlets that release resources on exit.
type Destroyer interface {
	DestroyApp(unconditional bool) error
}

// Env is what a MIDlet is constructed with.
type Env struct {
	Suite   *Suite
	Display *lcdui.Display
	Tones   *media.TonePlayer
	// GL backs micro3d rendering. It is nil on hosts without 3D.
	GL            gles.GL
	TextureFilter bool
	// Exit asks the runtime to shut down.
	Exit func()
}

// Factory constructs the MIDlet registered under a class name.
type Factory func(Env) (MIDlet, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// Register makes a MIDlet available under class, the name a suite's
// MIDlet-1 attribute refers to. It panics if class is registered twice or
// f is nil.
func Register(class string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if f == nil {
		panic("midlet: Register factory is nil")
	}
	if _, dup := factories[class]; dup {
		panic("midlet: Register called twice for " + class)
	}
	factories[class] = f
}

// Classes lists the registered class names, sorted.
func Classes() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for k := range factories {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

func lookup(class string) (Factory, bool) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	f, ok := factories[class]
	return f, ok
}

// Start constructs the suite's MIDlet and calls StartApp. A panic in either
// is returned as an error.
func (s *Suite) Start(env Env) (m MIDlet, err error) {
	class := s.Class()
	f, ok := lookup(class)
	if !ok {
		return nil, fmt.Errorf("%w: class %q", ErrNoEntryPoint, class)
	}
	env.Suite = s

	defer func() {
		if r := recover(); r != nil {
			logging.Logger().Error("midlet: panic during start", "class", class, "panic", r, "stack", string(debug.Stack()))
			m, err = nil, fmt.Errorf("midlet: start %s: panic: %v", class, r)
		}
	}()

	m, err = f(env)
	if err != nil {
		return nil, fmt.Errorf("midlet: construct %s: %w", class, err)
	}
	logging.Logger().Info("midlet: starting", "class", class, "name", s.Name())
	if err := m.StartApp(); err != nil {
		return m, fmt.Errorf("midlet: start %s: %w", class, err)
	}
	return m, nil
}
