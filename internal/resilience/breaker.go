// Package resilience stops calling a failing remote for a cooldown period.
package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned by Allow while the breaker rejects calls.
var ErrOpen = errors.New("circuit breaker is open")

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Settings configures the circuit breaker behavior
type Settings struct {
	// Failures is the number of consecutive failures that opens the breaker.
	// Zero disables the breaker.
	Failures int
	// Cooldown is how long the breaker stays open before letting one probe through.
	Cooldown time.Duration
	// OnStateChange is called whenever the state changes
	OnStateChange func(from, to State)
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// Breaker counts consecutive failures of a remote dependency.
type Breaker struct {
	settings Settings

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	probing  bool
}

// New creates a new circuit breaker with the given settings
func New(settings Settings) *Breaker {
	if settings.Cooldown <= 0 {
		settings.Cooldown = 30 * time.Second
	}
	if settings.Now == nil {
		settings.Now = time.Now
	}
	return &Breaker{settings: settings}
}

// State returns the current state of the circuit breaker
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentState()
}

// Allow reports whether a call may start. Every allowed call must be
// followed by exactly one Done or Cancel.
func (b *Breaker) Allow() error {
	if b == nil || b.settings.Failures <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.currentState() {
	case StateOpen:
		return ErrOpen
	case StateHalfOpen:
		if b.probing {
			return ErrOpen
		}
		b.probing = true
	}
	return nil
}

// Done records the outcome of an allowed call.
func (b *Breaker) Done(success bool) {
	if b == nil || b.settings.Failures <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	state := b.currentState()
	if state == StateHalfOpen {
		b.probing = false
	}
	if success {
		b.failures = 0
		b.setState(StateClosed)
		return
	}
	b.failures++
	if state == StateHalfOpen || b.failures >= b.settings.Failures {
		b.openedAt = b.settings.Now()
		b.setState(StateOpen)
	}
}

// Cancel ends an allowed call that was abandoned before the endpoint
// answered. Nothing is recorded; a half-open breaker lets the next call probe.
func (b *Breaker) Cancel() {
	if b == nil || b.settings.Failures <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.probing = false
}

func (b *Breaker) currentState() State {
	if b.state == StateOpen && b.settings.Now().Sub(b.openedAt) >= b.settings.Cooldown {
		b.setState(StateHalfOpen)
	}
	return b.state
}

func (b *Breaker) setState(state State) {
	if b.state == state {
		return
	}
	prev := b.state
	b.state = state
	if state == StateClosed {
		b.failures = 0
	}
	if b.settings.OnStateChange != nil {
		b.settings.OnStateChange(prev, state)
	}
}
