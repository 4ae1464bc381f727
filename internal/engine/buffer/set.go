package buffer

import (
	"errors"
	"sync"
)

// ErrBufferDisplayed is returned by Kill when the named buffer is still
// shown in a window.
var ErrBufferDisplayed = errors.New("buffer is being displayed and cannot be killed")

// Set is a name-indexed collection of buffers, the registry an editor
// keeps so commands can refer to buffers by name instead of holding
// direct references (the classic bfind/swbuffer/zotbuf surface).
type Set struct {
	mu      sync.Mutex
	byName  map[string]*Buffer
	current *Buffer
}

// NewSet returns an empty buffer set.
func NewSet() *Set {
	return &Set{byName: make(map[string]*Buffer)}
}

// Find returns the named buffer, creating it if create is true and no
// such buffer exists yet. Returns nil, false if the buffer does not
// exist and create is false.
func (s *Set) Find(name string, create bool, flags Flag) (*Buffer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if bp, ok := s.byName[name]; ok {
		return bp, true
	}
	if !create {
		return nil, false
	}
	bp := NewBuffer(WithName(name))
	bp.flags = flags
	s.byName[name] = bp
	if s.current == nil {
		s.current = bp
	}
	return bp, true
}

// Current returns the currently switched-to buffer, or nil if the set is
// empty.
func (s *Set) Current() *Buffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Switch makes bp the current buffer, incrementing its display count and
// decrementing the previous current buffer's, minus the window-record
// plumbing a window package owns.
func (s *Set) Switch(bp *Buffer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current != bp {
		s.current.windowCount--
	}
	bp.windowCount++
	s.current = bp
}

// Kill removes the named buffer from the set, refusing if it is
// currently displayed in any window.
func (s *Set) Kill(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bp, ok := s.byName[name]
	if !ok {
		return nil
	}
	if bp.windowCount != 0 {
		return ErrBufferDisplayed
	}
	delete(s.byName, name)
	if s.current == bp {
		s.current = nil
	}
	return nil
}

// List returns every buffer name currently registered.
func (s *Set) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.byName))
	for name := range s.byName {
		names = append(names, name)
	}
	return names
}
