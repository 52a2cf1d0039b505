package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/pagecache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	RefetchEvery  uint64
	SelfHealEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	refetchCtr  atomic.Uint64
	selfHealCtr atomic.Uint64
}

var _ pagecache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) PageRefetched(key string, index int, reason string) {
	if h.l == nil || !sample(h.opts.RefetchEvery, &h.refetchCtr) {
		return
	}
	h.l.Debug("pagecache.page_refetched",
		"key", h.redact(key),
		"index", index,
		"reason", reason)
}

func (h *Hooks) SelfHealPage(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Debug("pagecache.self_heal_page",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) StoreSetRejected(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Warn("pagecache.store_set_rejected",
		"key", h.redact(storageKey))
}

func (h *Hooks) ContextDropped(reason string) {
	if h.l == nil {
		return
	}
	h.l.Debug("pagecache.context_dropped",
		"reason", reason)
}

func (h *Hooks) SizeChanged(identity string, prev, next int) {
	if h.l == nil {
		return
	}
	h.l.Info("pagecache.size_changed",
		"identity", h.redact(identity),
		"prev", prev,
		"next", next)
}

func (h *Hooks) SizePersistError(identity string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("pagecache.size_persist_error",
		"identity", h.redact(identity),
		"err", err)
}

func (h *Hooks) IdentityRotated(prev, next string) {
	if h.l == nil {
		return
	}
	h.l.Debug("pagecache.identity_rotated",
		"prev", h.redact(prev),
		"next", h.redact(next))
}
