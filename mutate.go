package pagecache

import (
	"context"
	"fmt"
)

// Mutate applies a local update to the sequence's data, then runs a
// fetch pass that refetches exactly the pages the update changed.
//
// With neither Pages nor Update set, every page is refetched. With
// SkipRevalidate the new data replaces the snapshot and nothing is
// refetched.
func (s *sequence[T]) Mutate(ctx context.Context, m Mutation[T]) ([]T, error) {
	if m.Pages != nil && m.Update != nil {
		return nil, fmt.Errorf("pagecache: mutation sets both Pages and Update")
	}

	id, err := s.resolve(ctx)
	if err != nil || id == "" {
		return nil, err
	}

	// no data: force a full refetch
	if m.Pages == nil && m.Update == nil {
		s.setContext(&revalidationContext[T]{force: true})
		return s.rerun(ctx, id)
	}

	original := s.last()
	newData := m.Pages
	if m.Update != nil {
		newData = m.Update(s.last())
	}

	if m.SkipRevalidate {
		// silent replace: snapshot only, cached page entries stay as-is
		s.setLast(newData)
		if s.enabled {
			s.runner.Put(s.flightKey(id), s.last())
		}
		return s.last(), nil
	}

	s.seedPages(ctx, newData)
	s.setContext(&revalidationContext[T]{originalData: original})
	return s.rerun(ctx, id)
}

// Revalidate forces a refetch of every page.
func (s *sequence[T]) Revalidate(ctx context.Context) ([]T, error) {
	return s.Mutate(ctx, Mutation[T]{})
}

// SetSize grows or shrinks the page window to n and runs a fetch pass
// for the new window. Pages already cached are reused; only positions
// without a fresh entry are fetched.
func (s *sequence[T]) SetSize(ctx context.Context, n int) ([]T, error) {
	if n < 1 {
		return nil, fmt.Errorf("pagecache: size must be >= 1, got %d", n)
	}

	id, err := s.resolve(ctx)
	if err != nil || id == "" {
		return nil, err
	}

	s.mu.Lock()
	prev := s.size
	s.size = n
	s.mu.Unlock()

	if prev != n {
		if err := s.sizes.Save(ctx, sizeSlot(id), n); err != nil {
			s.hooks.SizePersistError(id, err)
			s.log.Warn("size persist failed", Fields{"identity": id, "size": n, "err": err.Error()})
		}
		s.hooks.SizeChanged(id, prev, n)
		if s.onSizeChange != nil {
			s.onSizeChange(prev, n)
		}
	}

	// identity update: cached pages in the window are reused, positions
	// without an entry are fetched
	return s.Mutate(ctx, Mutation[T]{Update: func(current []T) []T { return current }})
}

// AdjustSize is SetSize with the next size derived from the current one.
func (s *sequence[T]) AdjustSize(ctx context.Context, update func(current int) int) ([]T, error) {
	return s.SetSize(ctx, update(s.Size()))
}

// rerun invalidates the snapshot and runs a fetch pass, so the pending
// intent installed by the caller is consumed now rather than by a
// stale snapshot read.
func (s *sequence[T]) rerun(ctx context.Context, id string) ([]T, error) {
	if !s.enabled {
		return s.run(ctx)
	}
	s.runner.Forget(s.flightKey(id))
	return s.runner.Do(ctx, s.flightKey(id), func(ctx context.Context) ([]T, error) {
		return s.run(ctx)
	})
}

// seedPages writes the mutated pages into the page store so the
// follow-up pass compares against them. Keys are chained through the
// new data the same way a fetch pass chains them.
func (s *sequence[T]) seedPages(ctx context.Context, data []T) {
	var prev *T
	for i := range data {
		desc, err := s.keys(i, prev)
		if err != nil {
			s.log.Warn("seed key derivation failed", Fields{"index": i, "err": err.Error()})
			return
		}
		key, _, err := serializeKey(desc)
		if err != nil {
			s.log.Warn("seed key serialization failed", Fields{"index": i, "err": err.Error()})
			return
		}
		if key == "" {
			return
		}
		s.storePage(ctx, i, key, data[i])
		prev = &data[i]
	}
}
