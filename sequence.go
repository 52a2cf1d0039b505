package pagecache

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	c "github.com/unkn0wn-root/pagecache/codec"
	"github.com/unkn0wn-root/pagecache/internal/flight"
	"github.com/unkn0wn-root/pagecache/sizestore"
	st "github.com/unkn0wn-root/pagecache/store"
	"github.com/unkn0wn-root/pagecache/store/memory"
)

type sequence[T any] struct {
	ns             string
	keys           KeyFunc[T]
	fetch          FetchFunc[T]
	store          st.Store
	codec          c.Codec[T]
	sizes          sizestore.SizeStore
	log            Logger
	hooks          Hooks
	enabled        bool
	initialSize    int
	pageTTL        time.Duration
	revalidateAll  bool
	persistSize    bool
	compare        CompareFunc[T]
	computeSetCost SetCostFunc
	onSizeChange   func(prev, next int)
	runner         *flight.Runner[[]T]

	mu       sync.Mutex
	identity string // serialized key of page 0; "" until the sequence is ready
	size     int
	rctx     *revalidationContext[T]
	lastData []T
}

func newSequence[T any](opts Options[T]) (*sequence[T], error) {
	if opts.Namespace == "" {
		return nil, fmt.Errorf("pagecache: namespace is required")
	}
	if opts.Keys == nil {
		return nil, fmt.Errorf("pagecache: key func is required")
	}
	if opts.Fetch == nil {
		return nil, fmt.Errorf("pagecache: fetch func is required")
	}
	if opts.InitialSize < 0 {
		return nil, fmt.Errorf("pagecache: initial size must be >= 0 (0 uses the default), got %d", opts.InitialSize)
	}

	s := &sequence[T]{
		ns:            opts.Namespace,
		keys:          opts.Keys,
		fetch:         opts.Fetch,
		enabled:       !opts.Disabled,
		revalidateAll: opts.RevalidateAll,
		persistSize:   opts.PersistSize,
		onSizeChange:  opts.OnSizeChange,
	}

	// defaults
	s.log = coalesce[Logger](opts.Logger, NopLogger{})
	s.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	s.initialSize = coalesce[int](opts.InitialSize, 1)
	s.pageTTL = coalesce[time.Duration](opts.PageTTL, 10*time.Minute)
	s.size = s.initialSize

	if opts.Codec != nil {
		s.codec = opts.Codec
	} else {
		s.codec = c.JSON[T]{}
	}
	if opts.Store != nil {
		s.store = opts.Store
	} else {
		s.store = newDefaultStore()
	}
	if opts.Sizes != nil {
		s.sizes = opts.Sizes
	} else {
		s.sizes = sizestore.NewLocal(0, 0)
	}
	if opts.Compare != nil {
		s.compare = opts.Compare
	} else {
		s.compare = func(a, b T) bool { return reflect.DeepEqual(a, b) }
	}
	if opts.ComputeSetCost != nil {
		s.computeSetCost = opts.ComputeSetCost
	} else {
		s.computeSetCost = func(_ string, _ []byte) int64 { return 1 }
	}

	fcfg := flight.DefaultConfig()
	if opts.Flight != nil {
		fcfg = *opts.Flight
	}
	runner, err := flight.New[[]T](fcfg)
	if err != nil {
		return nil, err
	}
	s.runner = runner

	return s, nil
}

func (s *sequence[T]) Enabled() bool { return s.enabled }

func (s *sequence[T]) Close(ctx context.Context) error {
	// Close size store first (best effort)
	if s.sizes != nil {
		_ = s.sizes.Close(ctx)
	}
	if s.store != nil {
		return s.store.Close(ctx)
	}
	return nil
}

func (s *sequence[T]) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// resolve derives the sequence identity from the first page's key and
// binds the sequence to it. Returns "" (and nil error) when the
// sequence is not ready yet: an empty descriptor, a key-loader error,
// or a serialization failure at page 0 all mean "no identity", never a
// caller-visible error. Errors at later pages propagate from the run.
func (s *sequence[T]) resolve(ctx context.Context) (string, error) {
	desc, err := s.keys(0, nil)
	if err != nil {
		s.log.Debug("sequence not ready (first key errored)", Fields{"ns": s.ns, "err": err.Error()})
		return "", nil
	}
	key, _, err := serializeKey(desc)
	if err != nil {
		s.log.Debug("sequence not ready (first key unserializable)", Fields{"ns": s.ns, "err": err.Error()})
		return "", nil
	}
	if key == "" {
		s.log.Debug("sequence not ready (empty first key)", Fields{"ns": s.ns})
		return "", nil
	}
	s.attach(ctx, key)
	return key, nil
}

// attach binds the sequence to an identity, restoring or resetting the
// page-window size when the identity changes.
func (s *sequence[T]) attach(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == id {
		return
	}
	prev := s.identity
	s.identity = id
	if s.rctx != nil {
		s.rctx = nil
		s.hooks.ContextDropped("unconsumed")
	}
	s.lastData = nil

	restored := false
	if prev == "" || s.persistSize {
		n, ok, err := s.sizes.Load(ctx, sizeSlot(id))
		switch {
		case err != nil:
			s.log.Warn("size restore failed", Fields{"identity": id, "err": err.Error()})
		case ok && n >= 1:
			s.size = n
			restored = true
		}
	}
	if !restored {
		s.size = s.initialSize
	}
	if prev != "" {
		s.hooks.IdentityRotated(prev, id)
		s.log.Debug("sequence identity rotated", Fields{"prev": prev, "next": id, "size": s.size})
	}
}

// setContext installs the intent for the next run. Last write wins.
func (s *sequence[T]) setContext(rctx *revalidationContext[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rctx != nil {
		s.hooks.ContextDropped("overwritten")
	}
	s.rctx = rctx
}

// takeContext consumes the pending intent along with the current window
// size, atomically.
func (s *sequence[T]) takeContext() (*revalidationContext[T], int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rctx := s.rctx
	s.rctx = nil
	return rctx, s.size
}

func (s *sequence[T]) setLast(data []T) {
	cp := make([]T, len(data))
	copy(cp, data)
	s.mu.Lock()
	s.lastData = cp
	s.mu.Unlock()
}

// last returns a copy of the most recently assembled data, or nil.
func (s *sequence[T]) last() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastData == nil {
		return nil
	}
	cp := make([]T, len(s.lastData))
	copy(cp, s.lastData)
	return cp
}

func (s *sequence[T]) pageKey(key string) string  { return "page:" + s.ns + ":" + key }
func (s *sequence[T]) flightKey(id string) string { return "seq:" + s.ns + "@" + id }

func sizeSlot(id string) string { return "size@" + id }

func newDefaultStore() st.Store {
	return memory.New(memory.Config{})
}
