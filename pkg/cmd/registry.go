package cmd

import (
	"sort"
	"sync"
)

// Registry stores commands by exact, case-sensitive name. It does not
// dispatch; callers look commands up and invoke them with their own context.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds commands, replacing any previous command of the same name.
func (r *Registry) Register(cs ...Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range cs {
		r.commands[c.Name()] = c
	}
}

// Get returns the command with the given name.
func (r *Registry) Get(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.commands[name]
	return c, ok
}

// GetAll returns all registered commands, sorted by name.
func (r *Registry) GetAll() []Command {
	r.mu.RLock()
	list := make([]Command, 0, len(r.commands))
	for _, c := range r.commands {
		list = append(list, c)
	}
	r.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name() < list[j].Name()
	})
	return list
}
