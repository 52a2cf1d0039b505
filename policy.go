package pagecache

// revalidationContext carries the intent set by the last mutation or
// forced refresh into the next run. It is written by at most one writer
// and consumed exactly once; the run clears it regardless of outcome.
//
// Exactly one of the two shapes is used:
//   - force=true             -> every page is refetched
//   - originalData non-nil   -> pages that differ from the snapshot are refetched
type revalidationContext[T any] struct {
	originalData []T
	force        bool
}

// shouldRevalidate decides whether the page at index must be refetched.
// cached is nil on a cache miss; previous is the snapshot taken before
// the mutation, if a targeted revalidation is pending.
//
// Decision order is fixed: a global revalidate-all wins, then a forced
// refresh, then the default first-page rule for plain runs, then the
// per-page miss/changed checks.
func shouldRevalidate[T any](
	index int,
	cached *T,
	rctx *revalidationContext[T],
	revalidateAll bool,
	compare CompareFunc[T],
) (bool, string) {
	if revalidateAll {
		return true, "revalidate_all"
	}
	if rctx != nil && rctx.force {
		return true, "forced"
	}
	if rctx == nil && index == 0 {
		return true, "first_page"
	}
	if cached == nil {
		return true, "miss"
	}
	if rctx != nil && rctx.originalData != nil {
		if index >= len(rctx.originalData) {
			return true, "changed"
		}
		if !compare(rctx.originalData[index], *cached) {
			return true, "changed"
		}
	}
	return false, ""
}
