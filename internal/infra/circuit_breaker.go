package infra

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ── Relay breaker ─────────────────────────────────────────────────────────────
// Guards the SMTP relay. Consecutive relay failures open it; while open, sends
// fail fast with ErrCircuitOpen and the email jobs go back to the queue. After
// the cooldown a single probe send is let through.

type CBState int

const (
	CBClosed CBState = iota
	CBOpen
	CBHalfOpen
)

// String is the value reported under "smtp" by /health.
func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	}
	return "unknown"
}

var ErrCircuitOpen = errors.New("smtp relay unavailable, circuit open")

type CircuitBreakerConfig struct {
	Name             string
	FailureThreshold int           // consecutive relay failures that open the breaker
	SuccessThreshold int           // probe successes needed to close it again
	OpenTimeout      time.Duration // cooldown before the first probe
	// Counts decides which errors are relay failures. Nil counts every error.
	Counts func(error) bool
}

// DefaultCBConfig is the SMTP setting: three failed sends open the breaker for
// two minutes, and one good probe closes it. Messages the relay rejects do
// not count.
func DefaultCBConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             "smtp",
		FailureThreshold: 3,
		SuccessThreshold: 1,
		OpenTimeout:      2 * time.Minute,
		Counts:           func(err error) bool { return !errors.Is(err, ErrMessageRejected) },
	}
}

// BreakerStatus is a point-in-time view for /health.
type BreakerStatus struct {
	State    CBState
	Failures int
	RetryAt  time.Time // zero unless open
}

type CircuitBreaker struct {
	cfg CircuitBreakerConfig
	now func() time.Time

	mu        sync.Mutex
	state     CBState
	failures  int
	successes int
	openedAt  time.Time
	probing   bool
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 1
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = time.Minute
	}
	if cfg.Counts == nil {
		cfg.Counts = func(error) bool { return true }
	}
	return &CircuitBreaker{cfg: cfg, now: time.Now}
}

// WithClock replaces the time source.
func (cb *CircuitBreaker) WithClock(now func() time.Time) *CircuitBreaker {
	cb.mu.Lock()
	cb.now = now
	cb.mu.Unlock()
	return cb
}

func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.cooldownLocked()
	return cb.state
}

func (cb *CircuitBreaker) Status() BreakerStatus {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.cooldownLocked()
	st := BreakerStatus{State: cb.state, Failures: cb.failures}
	if cb.state == CBOpen {
		st.RetryAt = cb.openedAt.Add(cb.cfg.OpenTimeout)
	}
	return st
}

// Execute runs send unless the breaker is open or another probe is in flight.
func (cb *CircuitBreaker) Execute(send func() error) error {
	if !cb.admit() {
		return ErrCircuitOpen
	}
	err := send()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.probing = false
	if err != nil && cb.cfg.Counts(err) {
		cb.failLocked()
	} else {
		cb.succeedLocked()
	}
	return err
}

func (cb *CircuitBreaker) admit() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.cooldownLocked()
	switch cb.state {
	case CBOpen:
		return false
	case CBHalfOpen:
		if cb.probing {
			return false
		}
		cb.probing = true
	}
	return true
}

func (cb *CircuitBreaker) cooldownLocked() {
	if cb.state == CBOpen && !cb.now().Before(cb.openedAt.Add(cb.cfg.OpenTimeout)) {
		cb.state = CBHalfOpen
		cb.successes = 0
	}
}

func (cb *CircuitBreaker) failLocked() {
	cb.failures++
	if cb.state == CBHalfOpen || cb.failures >= cb.cfg.FailureThreshold {
		if cb.state != CBOpen {
			log.Warn().Str("breaker", cb.cfg.Name).Int("failures", cb.failures).Msg("circuit breaker opened")
		}
		cb.state = CBOpen
		cb.openedAt = cb.now()
		cb.successes = 0
	}
}

func (cb *CircuitBreaker) succeedLocked() {
	if cb.state != CBHalfOpen {
		cb.failures = 0
		return
	}
	cb.successes++
	if cb.successes >= cb.cfg.SuccessThreshold {
		cb.state = CBClosed
		cb.failures = 0
		cb.successes = 0
		log.Info().Str("breaker", cb.cfg.Name).Msg("circuit breaker closed")
	}
}
