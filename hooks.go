package pagecache

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The sequence calls them on hot paths.
type Hooks interface {
	// A page was fetched from the source instead of reused from cache.
	// reason ∈ {"revalidate_all", "forced", "first_page", "miss", "changed"}
	PageRefetched(key string, index int, reason string)

	// A single page entry was deleted by the cache on read.
	// reason ∈ {"corrupt", "index_mismatch", "value_decode"}
	SelfHealPage(storageKey, reason string)

	// Store returned ok=false on Set (backpressure/eviction).
	StoreSetRejected(storageKey string)

	// A pending revalidation context was discarded without being applied.
	// reason ∈ {"overwritten", "unconsumed"}
	ContextDropped(reason string)

	// The page-window size changed (SetSize/AdjustSize).
	SizeChanged(identity string, prev, next int)

	// Persisting the page-window size failed (size store outage).
	SizePersistError(identity string, err error)

	// The first page's key changed, so the whole sequence moved to a new slot.
	IdentityRotated(prev, next string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) PageRefetched(string, int, string) {}
func (NopHooks) SelfHealPage(string, string)       {}
func (NopHooks) StoreSetRejected(string)           {}
func (NopHooks) ContextDropped(string)             {}
func (NopHooks) SizeChanged(string, int, int)      {}
func (NopHooks) SizePersistError(string, error)    {}
func (NopHooks) IdentityRotated(string, string)    {}
