package workspace

import (
	"slices"
	"sync"
)

// Store owns the current State. Dispatch calls are serialized so events are
// applied one at a time, in the order they are dispatched.
type Store struct {
	mu          sync.Mutex
	state       State
	runner      CommandRunner
	subscribers []func(State)
}

// NewStore creates a store holding New(opts).
func NewStore(opts Options) *Store {
	return &Store{state: New(opts)}
}

// SetRunner sets the runner for commands. Without one, commands are dropped.
func (s *Store) SetRunner(runner CommandRunner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runner = runner
}

// Subscribe registers fn to receive the state after every dispatch.
func (s *Store) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies ev, notifies subscribers and starts the resulting commands.
// Subscribers and the runner are called without the lock held, so they may
// dispatch themselves.
func (s *Store) Dispatch(ev Event) {
	s.mu.Lock()
	next, cmds := Update(s.state, ev)
	s.state = next
	runner := s.runner
	subscribers := slices.Clone(s.subscribers)
	s.mu.Unlock()

	for _, fn := range subscribers {
		fn(next)
	}
	if runner == nil {
		return
	}
	for _, cmd := range cmds {
		runner.Run(cmd)
	}
}
