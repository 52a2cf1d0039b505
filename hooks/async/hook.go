// usage:
//
// import (
//
//	"log/slog"
//
//	"github.com/unkn0wn-root/pagecache"
//	"github.com/unkn0wn-root/pagecache/codec"
//	"github.com/unkn0wn-root/pagecache/hooks/async"
//	"github.com/unkn0wn-root/pagecache/sloghooks"
//
// )
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    RefetchEvery:  10, // sample logs: ~every 10th refetch
//	    SelfHealEvery: 1,  // log every self-heal
//	})
//
// hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
// defer hooks.Close()
//
//	seq, _ := pagecache.New[Page](pagecache.Options[Page]{
//	    Namespace: "app:prod:timeline",
//	    Keys:      keys,
//	    Fetch:     fetch,
//	    Codec:     codec.JSON[Page]{},
//	    Hooks:     hooks, // or `raw` if you don’t want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/pagecache"
)

type Hooks struct {
	inner pagecache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ pagecache.Hooks = (*Hooks)(nil)

func New(inner pagecache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) SelfHealPage(k, r string)    { h.try(func() { h.inner.SelfHealPage(k, r) }) }
func (h *Hooks) StoreSetRejected(k string)   { h.try(func() { h.inner.StoreSetRejected(k) }) }
func (h *Hooks) ContextDropped(r string)     { h.try(func() { h.inner.ContextDropped(r) }) }
func (h *Hooks) IdentityRotated(p, n string) { h.try(func() { h.inner.IdentityRotated(p, n) }) }
func (h *Hooks) PageRefetched(k string, i int, r string) {
	h.try(func() { h.inner.PageRefetched(k, i, r) })
}
func (h *Hooks) SizeChanged(id string, p, n int) {
	h.try(func() { h.inner.SizeChanged(id, p, n) })
}
func (h *Hooks) SizePersistError(id string, err error) {
	h.try(func() { h.inner.SizePersistError(id, err) })
}
