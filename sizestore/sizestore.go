// Package sizestore abstracts where page counts live. A sequence persists
// its current page count under its identity slot so a new sequence attached
// to the same identity resumes at the same length.
//
// Use Local (default) for in-process counts, or Redis to share counts across
// replicas and survive restarts.
package sizestore

import (
	"context"
	"time"
)

// SizeStore persists the number of pages requested per sequence identity.
type SizeStore interface {
	// Load returns the persisted count for slot; ok=false when absent.
	Load(ctx context.Context, slot string) (size int, ok bool, err error)
	// Save persists the count for slot.
	Save(ctx context.Context, slot string, size int) error
	// Forget removes the persisted count (best-effort).
	Forget(ctx context.Context, slot string) error
	// Cleanup prunes long-inactive slots if applicable (no-op for Redis).
	Cleanup(retention time.Duration)
	// Close releases resources (no-op ok).
	Close(context.Context) error
}
