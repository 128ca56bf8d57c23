package sales

import (
	"context"
	"errors"
	"sync"
	"time"

	"floreria/internal/dto"
)

// DefaultAlertInterval is how often the due scan re-runs while its owner is alive.
const DefaultAlertInterval = 5 * time.Minute

var ErrSchedulerRunning = errors.New("sales: alert scheduler already running")

// ScanFunc produces the current due alerts.
type ScanFunc func(ctx context.Context) ([]dto.DueAlertResponse, error)

// AlertScheduler runs a ScanFunc immediately on Start and then on every tick
// until Stop is called or the Start context is cancelled. It can be started
// again after it stops.
type AlertScheduler struct {
	scan     ScanFunc
	interval time.Duration
	deliver  func([]dto.DueAlertResponse)
	onError  func(error)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewAlertScheduler(scan ScanFunc, interval time.Duration, deliver func([]dto.DueAlertResponse)) *AlertScheduler {
	if interval <= 0 {
		interval = DefaultAlertInterval
	}
	return &AlertScheduler{scan: scan, interval: interval, deliver: deliver}
}

// OnError sets the callback for failed scans. Failed scans never stop the loop.
func (s *AlertScheduler) OnError(fn func(error)) { s.onError = fn }

func (s *AlertScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return ErrSchedulerRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(ctx, cancel, s.done)
	return nil
}

// Stop cancels the loop and waits for the goroutine to exit. It is safe to
// call on a stopped scheduler.
func (s *AlertScheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *AlertScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done != nil
}

func (s *AlertScheduler) loop(ctx context.Context, cancel context.CancelFunc, done chan struct{}) {
	defer func() {
		// Parent context cancelled: forget this run so Start works again.
		s.mu.Lock()
		if s.done == done {
			s.cancel, s.done = nil, nil
		}
		s.mu.Unlock()
		cancel()
		close(done)
	}()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *AlertScheduler) tick(ctx context.Context) {
	alerts, err := s.scan(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		if s.onError != nil {
			s.onError(err)
		}
		return
	}
	if s.deliver != nil {
		s.deliver(alerts)
	}
}
