// Package circuit provides a counting circuit breaker for calls to external
// dependencies.
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

const (
	defaultFailureThreshold = 5
	defaultSuccessThreshold = 2
)

// StateChange reports a transition caused by a single Record call.
type StateChange struct {
	Opened bool
	Closed bool
}

// Breaker opens after FailureThreshold consecutive failures and closes again
// after SuccessThreshold consecutive successes while open.
type Breaker struct {
	name             string
	failureThreshold int
	successThreshold int

	mu        sync.Mutex
	state     State
	failures  int
	successes int
}

type Option func(*Breaker)

func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

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
		failureThreshold: defaultFailureThreshold,
		successThreshold: defaultSuccessThreshold,
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

func (b *Breaker) IsOpen() bool {
	return b.State() == StateOpen
}

// RecordFailure counts a failed call. useFallback is true when the circuit is
// open after this call.
func (b *Breaker) RecordFailure() (useFallback bool, change StateChange) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.successes = 0
	if b.state == StateOpen {
		return true, change
	}
	b.failures++
	if b.failures >= b.failureThreshold {
		b.state = StateOpen
		b.failures = 0
		change.Opened = true
		return true, change
	}
	return false, change
}

// RecordSuccess counts a successful call. usePrimary is true when the circuit
// is closed after this call.
func (b *Breaker) RecordSuccess() (usePrimary bool, change StateChange) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	if b.state == StateClosed {
		return true, change
	}
	b.successes++
	if b.successes >= b.successThreshold {
		b.state = StateClosed
		b.successes = 0
		change.Closed = true
		return true, change
	}
	return false, change
}

func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.successes = 0
}
