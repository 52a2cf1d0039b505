package sizestore

import (
	"context"
	"sync"
	"time"
)

type localEntry struct {
	Size      int
	UpdatedAt time.Time
}

// Local keeps page counts in-process (default). Optional cleanup loop to
// prune slots that have not been written for a long time.
type Local struct {
	mu     sync.RWMutex
	sizes  map[string]localEntry
	ticker *time.Ticker
	stopCh chan struct{}
	wg     sync.WaitGroup

	retention time.Duration
}

var _ SizeStore = (*Local)(nil)

func NewLocal(cleanupInterval, retention time.Duration) *Local {
	s := &Local{
		sizes:     make(map[string]localEntry),
		retention: retention,
	}
	if cleanupInterval > 0 && retention > 0 {
		s.ticker = time.NewTicker(cleanupInterval)
		s.stopCh = make(chan struct{})
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for {
				select {
				case <-s.ticker.C:
					s.Cleanup(retention)
				case <-s.stopCh:
					return
				}
			}
		}()
	}
	return s
}

func (s *Local) Load(_ context.Context, slot string) (int, bool, error) {
	s.mu.RLock()
	e, ok := s.sizes[slot]
	s.mu.RUnlock()
	if !ok {
		return 0, false, nil
	}
	return e.Size, true, nil
}

func (s *Local) Save(_ context.Context, slot string, size int) error {
	now := time.Now()
	s.mu.Lock()
	s.sizes[slot] = localEntry{Size: size, UpdatedAt: now}
	s.mu.Unlock()
	return nil
}

func (s *Local) Forget(_ context.Context, slot string) error {
	s.mu.Lock()
	delete(s.sizes, slot)
	s.mu.Unlock()
	return nil
}

func (s *Local) Cleanup(retention time.Duration) {
	if retention <= 0 {
		return
	}
	cutoff := time.Now().Add(-retention)

	s.mu.Lock()
	for k, e := range s.sizes {
		if !e.UpdatedAt.IsZero() && e.UpdatedAt.Before(cutoff) {
			delete(s.sizes, k)
		}
	}
	s.mu.Unlock()
}

func (s *Local) Close(_ context.Context) error {
	if s.stopCh != nil {
		close(s.stopCh)
		if s.ticker != nil {
			s.ticker.Stop() // stop ticker before waiting
		}
		s.wg.Wait()
	}
	return nil
}
