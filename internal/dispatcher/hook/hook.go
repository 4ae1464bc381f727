// Package hook implements the three priority-ordered command hook chains
// (pre, post, error) that wrap command execution with state capture.
package hook

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Phase identifies which chain a hook belongs to.
type Phase int

const (
	Pre Phase = iota
	Post
	Error
)

// Outcome is the result of running a PRE hook, controlling whether the
// wrapped command still executes.
type Outcome int

const (
	Continue Outcome = iota
	Handled
	Abort
	ErrorOutcome
)

// Context carries the command, its arguments, timestamps, and error
// around a single command execution, for hooks to inspect. It has
// before/after buffer and window slots, but Execute does not fill them.
type Context struct {
	Command       string
	PrefixFlag    bool
	RepeatCount   int
	TargetCommand string

	// Before/After snapshots identify buffer/window by pointer so the
	// manager can detect a swap with a plain == comparison; they must be
	// comparable values (pointers), never slices or maps. Execute never
	// sets them: they hold nil unless a PRE hook stores values, and
	// BufferChanged/WindowChanged compare them before POST hooks run.
	BufferBefore any
	BufferAfter  any
	WindowBefore any
	WindowAfter  any

	Start time.Time
	End   time.Time

	BufferChanged bool
	WindowChanged bool

	Err error
}

// Func is a single hook callback. PRE hooks return an Outcome; POST and
// ERROR hooks only observe and their Outcome is ignored beyond logging.
type Func func(ctx *Context) Outcome

// entry is one registered hook.
type entry struct {
	id            int64
	fn            Func
	priority      int
	active        bool
	name          string
	targetCommand string
}

// Chain holds a single phase's priority-ordered hooks.
type Chain struct {
	mu      sync.Mutex
	entries []entry
}

func (c *Chain) insertSorted(e entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, e)
	sort.SliceStable(c.entries, func(i, j int) bool {
		return c.entries[i].priority > c.entries[j].priority
	})
}

func (c *Chain) snapshot() []entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Remove deletes the hook with the given id from the chain. Returns
// false if not found.
func (c *Chain) Remove(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.entries {
		if c.entries[i].id == id {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Manager owns the three chains and the execution wrapper, plus the
// atomic counters tracking execution, abort, and timing stats.
type Manager struct {
	pre   Chain
	post  Chain
	error Chain

	nextID int64

	executions atomic.Uint64
	aborts     atomic.Uint64
	totalNanos atomic.Uint64
}

// New returns an empty hook manager.
func New() *Manager {
	return &Manager{}
}

// Register adds fn to the named phase's chain at the given priority
// (higher runs first), optionally filtered to a single target command.
// Returns a monotonic registration id usable with Unregister.
func (m *Manager) Register(phase Phase, name string, priority int, targetCommand string, fn Func) int64 {
	id := atomic.AddInt64(&m.nextID, 1)
	e := entry{id: id, fn: fn, priority: priority, active: true, name: name, targetCommand: targetCommand}
	switch phase {
	case Pre:
		m.pre.insertSorted(e)
	case Post:
		m.post.insertSorted(e)
	case Error:
		m.error.insertSorted(e)
	}
	return id
}

// Unregister removes a previously registered hook from its phase.
func (m *Manager) Unregister(phase Phase, id int64) bool {
	switch phase {
	case Pre:
		return m.pre.Remove(id)
	case Post:
		return m.post.Remove(id)
	case Error:
		return m.error.Remove(id)
	}
	return false
}

// CommandFunc is the wrapped command body: it performs the actual edit
// and reports whether it succeeded.
type CommandFunc func() error

// Execute wraps cmd's execution with the PRE/POST/ERROR chains in the
// five-step run-pre, run-command, run-post (or run-error), count, and
// record-duration protocol.
func (m *Manager) Execute(cmdName string, prefixFlag bool, repeatCount int, cmd CommandFunc) error {
	ctx := &Context{
		Command:     cmdName,
		PrefixFlag:  prefixFlag,
		RepeatCount: repeatCount,
		Start:       time.Now(),
	}

	suppressed := false
	var preErr error

	for _, e := range m.pre.snapshot() {
		if !e.active {
			continue
		}
		if e.targetCommand != "" && e.targetCommand != cmdName {
			continue
		}
		switch e.fn(ctx) {
		case Continue:
			// proceed
		case Handled:
			suppressed = true
		case Abort:
			suppressed = true
			preErr = errAborted
		case ErrorOutcome:
			m.runErrorChain(ctx)
		}
		if suppressed {
			break
		}
	}

	var execErr error
	if !suppressed {
		execErr = cmd()
	} else {
		execErr = preErr
	}

	ctx.End = time.Now()
	ctx.Err = execErr
	ctx.BufferChanged = ctx.BufferBefore != ctx.BufferAfter
	ctx.WindowChanged = ctx.WindowBefore != ctx.WindowAfter

	m.executions.Add(1)
	m.totalNanos.Add(uint64(ctx.End.Sub(ctx.Start).Nanoseconds()))
	if execErr != nil {
		m.aborts.Add(1)
	}

	for _, e := range m.post.snapshot() {
		if !e.active {
			continue
		}
		if e.targetCommand != "" && e.targetCommand != cmdName {
			continue
		}
		if e.fn(ctx) == ErrorOutcome {
			m.runErrorChain(ctx)
		}
	}

	return execErr
}

func (m *Manager) runErrorChain(ctx *Context) {
	for _, e := range m.error.snapshot() {
		if !e.active {
			continue
		}
		e.fn(ctx)
	}
}

// Stats returns the atomic execution counters.
func (m *Manager) Stats() (executions, aborts uint64, totalNanos uint64) {
	return m.executions.Load(), m.aborts.Load(), m.totalNanos.Load()
}

var errAborted = abortedError{}

type abortedError struct{}

func (abortedError) Error() string { return "command aborted by pre-hook" }
