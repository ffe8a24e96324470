package workspace

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRunner struct {
	mu   sync.Mutex
	cmds []Command
}

func (r *recordingRunner) Run(cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cmds = append(r.cmds, cmd)
}

func TestStore_DispatchRunsCommandsAndNotifies(t *testing.T) {
	store := NewStore(Options{})
	runner := &recordingRunner{}
	store.SetRunner(runner)

	var seen []Phase
	store.Subscribe(func(s State) { seen = append(seen, s.Session.Phase) })

	store.Dispatch(Init{})
	store.Dispatch(SessionChecked{Err: assert.AnError})

	assert.Equal(t, []Command{CheckSession{}}, runner.cmds)
	assert.Equal(t, []Phase{PhaseChecking, PhaseAnonymous}, seen)
	assert.Equal(t, PhaseAnonymous, store.State().Session.Phase)
}

func TestStore_WithoutRunnerDropsCommands(t *testing.T) {
	store := NewStore(Options{})
	store.Dispatch(Init{})
	assert.Equal(t, PhaseChecking, store.State().Session.Phase)
}

func TestStore_SubscriberMayDispatch(t *testing.T) {
	store := NewStore(Options{})
	store.SetRunner(&recordingRunner{})

	dispatched := false
	store.Subscribe(func(s State) {
		if s.Session.Phase == PhaseAnonymous && !dispatched {
			dispatched = true
			store.Dispatch(UsernameChanged{Value: "ana"})
		}
	})

	store.Dispatch(Init{})
	store.Dispatch(SessionChecked{Err: assert.AnError})
	require.True(t, dispatched)
	assert.Equal(t, "ana", store.State().Login.Username)
}

func TestStore_ConcurrentDispatch(t *testing.T) {
	store := NewStore(Options{})
	store.Dispatch(Init{})
	store.Dispatch(SessionChecked{Err: assert.AnError})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Dispatch(UsernameChanged{Value: "ana"})
		}()
	}
	wg.Wait()
	assert.Equal(t, "ana", store.State().Login.Username)
}
