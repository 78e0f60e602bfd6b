package logger

import (
	"sort"
	"sync"
)

// defaultComponents are the toolkit packages that emit logs. RegisterDefaults
// seeds one named logger per component when called with no names.
var defaultComponents = []string{"config", "httpclient", "observability", "provider", "resilience"}

// registry holds named loggers, typically one per component. Call sites ask
// by name; unknown names fall back to the global logger tagged with the
// requested component, so a guarded call site can always log under its
// component even before Init runs.
var registry = &loggerRegistry{
	loggers: make(map[string]*Logger),
}

type loggerRegistry struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
}

func (r *loggerRegistry) register(name string, l *Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loggers[name] = l
}

func (r *loggerRegistry) lookup(name string) (*Logger, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.loggers[name]
	return l, ok
}

// Register stores a named logger, replacing any previous registration.
func Register(name string, l *Logger) {
	registry.register(name, l)
}

// Get retrieves a named logger, falling back to the global logger tagged
// with the requested component name.
func Get(name string) *Logger {
	if l, ok := registry.lookup(name); ok {
		return l
	}
	return GetGlobalLogger().WithComponent(name)
}

// ForDependency returns the global logger tagged with a guarded dependency's
// name, for logs that belong to the dependency rather than to a component.
func ForDependency(name string) *Logger {
	return GetGlobalLogger().WithDependency(name)
}

// Names returns the registered logger names, sorted.
func Names() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	names := make([]string, 0, len(registry.loggers))
	for name := range registry.loggers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterDefaults seeds the registry with component loggers derived from
// the global logger. With no arguments it registers the toolkit's own
// components; call it after Init so the seeded loggers pick up the
// configured level and format.
func RegisterDefaults(names ...string) {
	if len(names) == 0 {
		names = defaultComponents
	}
	for _, name := range names {
		Register(name, GetGlobalLogger().WithComponent(name))
	}
}
