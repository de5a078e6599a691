// Package session holds the state of one image request front end: the status of
// the current cycle, the last image and the last error. Front ends read it through
// snapshots and subscriptions; only the request controller moves it between states.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmorgan81/promptshot/internal/display"
)

type Status int

const (
	Idle Status = iota
	Loading
	Succeeded
	Failed
)

var statusNames = [...]string{"idle", "loading", "succeeded", "failed"}

func (s Status) String() string {
	if s < Idle || s > Failed {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return statusNames[s]
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

var (
	ErrBusy       = errors.New("a generation is already in progress")
	ErrNotLoading = errors.New("no generation in progress")
)

// Snapshot is an immutable view of the session.
// Image is set only when Status is Succeeded, Error only when Status is Failed.
type Snapshot struct {
	Status    Status          `json:"status"`
	Prompt    string          `json:"prompt"`
	Attempt   int             `json:"attempt,omitempty"`
	Image     *display.Handle `json:"image,omitempty"`
	Error     string          `json:"error,omitempty"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (s Snapshot) Loading() bool { return s.Status == Loading }

type Session struct {
	mu   sync.Mutex
	snap Snapshot
	subs map[chan Snapshot]struct{}
	now  func() time.Time
}

func New() *Session {
	s := &Session{subs: map[chan Snapshot]struct{}{}, now: time.Now}
	s.snap.UpdatedAt = s.now().UTC()
	return s
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Begin starts a cycle for prompt. It returns the image being superseded, if any,
// so the caller can release it.
func (s *Session) Begin(prompt string) (*display.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.Status == Loading {
		return nil, ErrBusy
	}
	prev := s.snap.Image
	s.commit(Snapshot{Status: Loading, Prompt: prompt, Attempt: 1})
	return prev, nil
}

// Reject records a prompt refused before any request was made.
func (s *Session) Reject(prompt, message string) (*display.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.Status == Loading {
		return nil, ErrBusy
	}
	prev := s.snap.Image
	s.commit(Snapshot{Status: Failed, Prompt: prompt, Error: message})
	return prev, nil
}

// Attempt records that attempt n of the running cycle has started.
func (s *Session) Attempt(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.Status != Loading || s.snap.Attempt == n {
		return
	}
	next := s.snap
	next.Attempt = n
	s.commit(next)
}

func (s *Session) Succeed(h display.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.Status != Loading {
		return ErrNotLoading
	}
	s.commit(Snapshot{Status: Succeeded, Prompt: s.snap.Prompt, Image: &h})
	return nil
}

func (s *Session) Fail(message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.Status != Loading {
		return ErrNotLoading
	}
	s.commit(Snapshot{Status: Failed, Prompt: s.snap.Prompt, Error: message})
	return nil
}

// Subscribe returns a channel that receives the current snapshot and every later one.
// A subscriber that falls behind only misses intermediate snapshots, never the latest.
// The returned func unsubscribes and closes the channel.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.mu.Lock()
	s.subs[ch] = struct{}{}
	ch <- s.snap
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, ch)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// commit must be called with mu held.
func (s *Session) commit(next Snapshot) {
	next.UpdatedAt = s.now().UTC()
	s.snap = next
	for ch := range s.subs {
		select {
		case ch <- next:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- next:
			default:
			}
		}
	}
}
