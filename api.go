package pagecache

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/pagecache/codec"
	"github.com/unkn0wn-root/pagecache/internal/flight"
	"github.com/unkn0wn-root/pagecache/sizestore"
	st "github.com/unkn0wn-root/pagecache/store"
)

// KeyFunc derives the key descriptor for the page at index. previous is
// the assembled data of the page before it (nil for index 0), so cursor
// style pagination can chain keys through page data.
//
// Returning nil, false, "", a nil pointer, or an empty slice (with a nil
// error) means "no page at this position": index 0 marks the whole
// sequence not ready, any later index marks the end of the sequence.
type KeyFunc[T any] func(index int, previous *T) (any, error)

// FetchFunc loads one page from the source of truth. key is the
// serialized page key; args are the structured segments of the key
// descriptor, in order, when the descriptor was not a plain string.
type FetchFunc[T any] func(ctx context.Context, key string, args ...any) (T, error)

// CompareFunc reports whether two pages are equal. Used to decide which
// pages a mutation actually changed.
type CompareFunc[T any] func(a, b T) bool

type SetCostFunc func(storageKey string, raw []byte) int64

// Mutation describes a local update to a sequence's data.
// Set at most one of Pages or Update; a Mutation with neither forces a
// full refetch of all pages.
type Mutation[T any] struct {
	// Pages replaces the sequence's data outright.
	Pages []T

	// Update derives the new data from the current data. The callback
	// must not retain or modify the slice it is given.
	Update func(current []T) []T

	// SkipRevalidate applies the new data without scheduling any
	// refetch. Cached pages are left as they were.
	SkipRevalidate bool
}

// Sequence is the high-level API for one paginated, incrementally
// growable dataset. All methods are safe for concurrent use.
type Sequence[T any] interface {
	Enabled() bool
	Close(context.Context) error

	// Load returns the assembled pages, running a fetch pass only if no
	// fresh snapshot exists. Concurrent Loads share one pass.
	Load(ctx context.Context) ([]T, error)

	// Refresh discards the snapshot and runs a fetch pass now, applying
	// the default reuse rules (first page refetched, rest served from
	// cache when present).
	Refresh(ctx context.Context) ([]T, error)

	// Mutate applies a local update and revalidates exactly the pages
	// the update changed.
	Mutate(ctx context.Context, m Mutation[T]) ([]T, error)

	// Revalidate forces a refetch of every page. Equivalent to
	// Mutate with a zero Mutation.
	Revalidate(ctx context.Context) ([]T, error)

	// Size returns the current number of pages the sequence spans.
	Size() int

	// SetSize grows or shrinks the page window to n (n >= 1) and runs a
	// fetch pass for the new window. Already cached pages are reused.
	SetSize(ctx context.Context, n int) ([]T, error)

	// AdjustSize is SetSize with the next size derived from the
	// current one, e.g. grow by one page.
	AdjustSize(ctx context.Context, update func(current int) int) ([]T, error)
}

// Options tune the behavior of a paginated sequence.
// Namespace, Keys and Fetch are required; others have sensible defaults.
type Options[T any] struct {
	// Required
	Namespace string // logical namespace to avoid collisions, e.g. "timeline", "orders"
	Keys      KeyFunc[T]
	Fetch     FetchFunc[T]

	// Store holds serialized pages. nil => in-process memory store.
	Store st.Store

	Codec c.Codec[T] // nil => codec.JSON[T]

	// Sizes persists the page-window size per sequence identity.
	// nil => in-process store, sizes reset on restart.
	Sizes sizestore.SizeStore

	Logger Logger // if nil, NopLogger is used
	Hooks  Hooks  // if nil, NopHooks is used

	InitialSize   int           // pages on first run; 0 => 1
	PageTTL       time.Duration // per page entry; 0 => 10m
	RevalidateAll bool          // refetch every page on every run
	PersistSize   bool          // restore the size slot when the identity rotates

	// Compare decides page equality for targeted revalidation.
	// nil => reflect.DeepEqual.
	Compare CompareFunc[T]

	// Flight tunes snapshot dedup and background refresh.
	// nil => flight.DefaultConfig().
	Flight *flight.Config

	// OnSizeChange is invoked synchronously after SetSize/AdjustSize
	// commits a new window size.
	OnSizeChange func(prev, next int)

	Disabled       bool        // default false (enabled)
	ComputeSetCost SetCostFunc // default 1
}

// New builds a Sequence from opts.
func New[T any](opts Options[T]) (Sequence[T], error) {
	return newSequence[T](opts)
}
