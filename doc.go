// Package pagecache implements a stale-while-revalidate cache for
// paginated, incrementally growable datasets. Each page is cached as
// its own entry; the key of page N can depend on the data of page N-1,
// so cursor-style pagination works the same as offset-style.
//
// Components:
//   - Store: byte store with TTL for page entries (e.g. memory, Ristretto, BigCache, Redis).
//   - Codec[T]: (de)serializes one page T <-> []byte.
//   - SizeStore: persists the page-window size per sequence. Local
//     (in-process) by default, optional Redis implementation for
//     multi-replica / restart persistence.
//
// Keys:
//
//	page:<ns>:<key>  - one page entry
//	seq:<ns>@<key0>  - assembled snapshot of the whole sequence
//	size@<key0>      - page-window size slot (inside the SizeStore keyspace)
//
// Revalidation pattern:
//
//	data, _ := seq.Load(ctx)                             // cached snapshot or one shared pass
//	seq.Mutate(ctx, pagecache.Mutation[P]{Pages: next})  // apply locally, refetch what changed
//	seq.SetSize(ctx, seq.Size()+1)                       // grow window, fetch only the new page
package pagecache
