package config

import (
	"fmt"
	"sync"
)

// The runtime context is process-wide: commands anywhere in the tree
// reach the same Settings instance.

var (
	mu      sync.Mutex
	current *Settings
)

// Initialize builds the runtime settings from the given arguments and
// installs them as the current context. When a context already exists its
// arguments are carried forward and only the provided scope options are
// replaced, then the scope files are reloaded.
func Initialize(args Args) (*Settings, error) {
	mu.Lock()
	defer mu.Unlock()

	if current != nil {
		merged := current.args
		if args.Scope != "" {
			merged.Scope = args.Scope
		}
		if args.FilePath != "" {
			merged.FilePath = args.FilePath
		}
		merged.Verbose = merged.Verbose || args.Verbose
		merged.Quiet = merged.Quiet || args.Quiet
		current.args = merged
		current.load()
		current.buildContext()
		return current, nil
	}

	s, err := NewSettings(args)
	if err != nil {
		return nil, err
	}
	current = s
	return s, nil
}

// Current returns the installed runtime settings.
func Current() (*Settings, error) {
	mu.Lock()
	defer mu.Unlock()
	if current == nil {
		return nil, fmt.Errorf("runtime context not initialized")
	}
	return current, nil
}

// Reset clears the installed context. Used by tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	current = nil
}

// install replaces the current context with a prebuilt Settings instance.
// Used by tests to point the context at temporary directories.
func install(s *Settings) {
	mu.Lock()
	defer mu.Unlock()
	current = s
}
