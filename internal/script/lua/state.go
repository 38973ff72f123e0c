package lua

import (
	"context"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultExecutionTimeout bounds a single script execution. Runaway
// loops are canceled through the VM's context support.
const DefaultExecutionTimeout = 5 * time.Second

// State wraps gopher-lua with sandboxing and an execution budget.
//
// gopher-lua's LState is not goroutine-safe. The mutex serializes
// access from Go code; Lua execution itself is single-threaded.
type State struct {
	L *lua.LState

	mu sync.Mutex

	execTimeout time.Duration
	sandbox     *Sandbox
	closed      bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithExecutionTimeout sets the budget for a single execution. Zero
// or negative disables the budget.
func WithExecutionTimeout(d time.Duration) StateOption {
	return func(s *State) {
		s.execTimeout = d
	}
}

// NewState creates a new sandboxed Lua state.
func NewState(opts ...StateOption) (*State, error) {
	state := &State{
		execTimeout: DefaultExecutionTimeout,
	}

	for _, opt := range opts {
		opt(state)
	}

	L := lua.NewState(lua.Options{
		SkipOpenLibs: true, // opened selectively below
	})

	state.L = L

	openSafeLibraries(L)

	state.sandbox = NewSandbox(L)
	state.sandbox.Install()

	return state, nil
}

// openSafeLibraries opens only safe Lua standard libraries.
func openSafeLibraries(L *lua.LState) {
	// package first: require and PreloadModule need package.preload.
	// The sandbox clears its filesystem loaders afterwards.
	lua.OpenPackage(L)
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// Intentionally not opened:
	// - io (filesystem access)
	// - os (system calls, execute)
	// - debug (can bypass the sandbox)
	// - coroutine and channel (no use in editor scripts)
}

// DoString executes a Lua string. Execution is synchronous and
// bounded by the execution timeout.
func (s *State) DoString(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	return s.execute(func() error {
		return s.L.DoString(code)
	})
}

// DoFile executes a Lua file. Execution is synchronous and bounded by
// the execution timeout.
func (s *State) DoFile(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	return s.execute(func() error {
		return s.L.DoFile(path)
	})
}

// execute runs fn under the execution budget with panic recovery.
// Caller must hold mu.
func (s *State) execute(fn func() error) error {
	if s.execTimeout <= 0 {
		return s.doWithRecovery(fn)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.execTimeout)
	defer cancel()

	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	err := s.doWithRecovery(fn)
	if err != nil && ctx.Err() != nil {
		return fmt.Errorf("%w after %s", ErrExecutionTimeout, s.execTimeout)
	}
	return err
}

// doWithRecovery executes a function with panic recovery.
func (s *State) doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// Call calls a global Lua function with the given arguments. Returns
// an empty slice (not nil) if the function returns no values.
func (s *State) Call(fn string, args ...lua.LValue) ([]lua.LValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStateClosed
	}

	fnVal := s.L.GetGlobal(fn)
	if fnVal == lua.LNil {
		return nil, fmt.Errorf("function %q not found", fn)
	}
	if fnVal.Type() != lua.LTFunction {
		return nil, fmt.Errorf("%q is not a function (got %s)", fn, fnVal.Type())
	}

	stackTop := s.L.GetTop()

	var results []lua.LValue
	err := s.execute(func() error {
		s.L.Push(fnVal)
		for _, arg := range args {
			s.L.Push(arg)
		}

		if err := s.L.PCall(len(args), lua.MultRet, nil); err != nil {
			return err
		}

		nRet := s.L.GetTop() - stackTop
		results = make([]lua.LValue, 0, nRet)
		for i := 0; i < nRet; i++ {
			results = append(results, s.L.Get(stackTop+i+1))
		}
		if nRet > 0 {
			s.L.Pop(nRet)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return results, nil
}

// GetGlobal returns a global variable value.
func (s *State) GetGlobal(name string) lua.LValue {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return lua.LNil
	}

	return s.L.GetGlobal(name)
}

// SetGlobal sets a global variable.
func (s *State) SetGlobal(name string, value lua.LValue) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.L.SetGlobal(name, value)
}

// LuaState returns the underlying gopher-lua state. Direct access
// bypasses the mutex and the sandbox; the caller takes over safety.
func (s *State) LuaState() *lua.LState {
	return s.L
}

// Sandbox returns the sandbox for capability management.
func (s *State) Sandbox() *Sandbox {
	return s.sandbox
}

// IsClosed returns true if the state has been closed.
func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close releases the Lua state. Further calls return ErrStateClosed.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.L.Close()
	s.closed = true
	return nil
}
