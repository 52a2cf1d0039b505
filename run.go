package pagecache

import (
	"context"

	"github.com/unkn0wn-root/pagecache/internal/wire"
)

// Load returns the assembled pages, sharing one fetch pass between
// concurrent callers and serving a fresh snapshot without running one.
func (s *sequence[T]) Load(ctx context.Context) ([]T, error) {
	id, err := s.resolve(ctx)
	if err != nil || id == "" {
		return nil, err
	}
	if !s.enabled {
		return s.run(ctx)
	}
	return s.runner.Do(ctx, s.flightKey(id), func(ctx context.Context) ([]T, error) {
		return s.run(ctx)
	})
}

// Refresh drops the snapshot and runs a fetch pass now. No pending
// intent means the default rules apply: the first page is refetched,
// later pages are reused from cache when present.
func (s *sequence[T]) Refresh(ctx context.Context) ([]T, error) {
	id, err := s.resolve(ctx)
	if err != nil || id == "" {
		return nil, err
	}
	return s.rerun(ctx, id)
}

// run performs one fetch pass: it walks page positions in order, derives
// each key from the previous page's data, and decides per page whether
// to refetch or reuse the cached entry. The pending intent is consumed
// exactly once, before the first page.
func (s *sequence[T]) run(ctx context.Context) ([]T, error) {
	rctx, size := s.takeContext()

	out := make([]T, 0, size)
	var prev *T
	for i := 0; i < size; i++ {
		desc, err := s.keys(i, prev)
		if err != nil {
			return nil, &KeySerializeError{Index: i, Err: err}
		}
		key, args, err := serializeKey(desc)
		if err != nil {
			return nil, &KeySerializeError{Index: i, Err: err}
		}
		if key == "" {
			// sequence ended before the window was filled
			break
		}

		cached := s.lookup(ctx, i, key)
		need, reason := shouldRevalidate(i, cached, rctx, s.revalidateAll, s.compare)

		var page T
		if need {
			s.hooks.PageRefetched(key, i, reason)
			page, err = s.fetch(ctx, key, args...)
			if err != nil {
				return nil, &PageFetchError{Index: i, Key: key, Err: err}
			}
			s.storePage(ctx, i, key, page)
		} else {
			page = *cached
		}

		out = append(out, page)
		prev = &page
	}

	s.setLast(out)
	return out, nil
}

// lookup reads one page entry. Any malformed entry is deleted on read
// and treated as a miss; store outages degrade to misses as well.
func (s *sequence[T]) lookup(ctx context.Context, index int, key string) *T {
	if !s.enabled {
		return nil
	}
	sk := s.pageKey(key)
	raw, ok, err := s.store.Get(ctx, sk)
	if err != nil {
		s.log.Warn("page read failed; treating as miss", Fields{"key": sk, "err": err.Error()})
		return nil
	}
	if !ok {
		return nil
	}
	idx, payload, err := wire.DecodePage(raw)
	if err != nil {
		_ = s.store.Del(ctx, sk) // self-heal corrupt
		s.hooks.SelfHealPage(sk, "corrupt")
		return nil
	}
	if int(idx) != index {
		// entry was written for a different position (key collision or moved page)
		_ = s.store.Del(ctx, sk)
		s.hooks.SelfHealPage(sk, "index_mismatch")
		return nil
	}
	v, err := s.codec.Decode(payload)
	if err != nil {
		_ = s.store.Del(ctx, sk) // self-heal
		s.hooks.SelfHealPage(sk, "value_decode")
		return nil
	}
	return &v
}

// storePage writes one page entry. Store failures are logged, never
// surfaced: the assembled data is already in hand.
func (s *sequence[T]) storePage(ctx context.Context, index int, key string, page T) {
	if !s.enabled {
		return
	}
	payload, err := s.codec.Encode(page)
	if err != nil {
		s.log.Error("page encode failed", Fields{"key": key, "index": index, "err": err.Error()})
		return
	}
	sk := s.pageKey(key)
	raw := wire.EncodePage(uint32(index), payload)
	ok, err := s.store.Set(ctx, sk, raw, s.computeSetCost(sk, raw), s.pageTTL)
	if err != nil {
		s.log.Warn("page write failed", Fields{"key": sk, "err": err.Error()})
		return
	}
	if !ok {
		s.hooks.StoreSetRejected(sk)
	}
}
