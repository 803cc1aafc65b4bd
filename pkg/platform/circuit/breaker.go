// Package circuit counts consecutive failures of a shared dependency so callers
// can switch to a local fallback while it is unhealthy.
package circuit

import "sync"

type State int

const (
	StateClosed State = iota
	StateOpen
)

func (s State) String() string {
	if s == StateOpen {
		return "open"
	}
	return "closed"
}

// Transition reports a state change caused by the last Record call.
type Transition struct {
	Opened bool
	Closed bool
}

// Breaker opens after FailureThreshold consecutive failures and closes after
// SuccessThreshold consecutive successes observed while open. The primary is
// still called while open; the breaker only decides whose answer to use.
type Breaker struct {
	mu               sync.Mutex
	name             string
	state            State
	failures         int
	successes        int
	failureThreshold int
	successThreshold int
}

type Option func(*Breaker)

// WithFailureThreshold defaults to 5.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

// WithSuccessThreshold defaults to 3.
func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.successThreshold = n
		}
	}
}

func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		failureThreshold: 5,
		successThreshold: 3,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Breaker) Name() string { return b.name }

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// RecordFailure returns true when the caller should answer from its fallback.
func (b *Breaker) RecordFailure() (useFallback bool, t Transition) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.successes = 0
	if b.state == StateOpen {
		return true, Transition{}
	}
	if b.failures >= b.failureThreshold {
		b.state = StateOpen
		return true, Transition{Opened: true}
	}
	return false, Transition{}
}

// RecordSuccess returns true when the primary's answer may be used.
func (b *Breaker) RecordSuccess() (usePrimary bool, t Transition) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	if b.state != StateOpen {
		return true, Transition{}
	}
	b.successes++
	if b.successes < b.successThreshold {
		return false, Transition{}
	}
	b.state = StateClosed
	b.successes = 0
	return true, Transition{Closed: true}
}
