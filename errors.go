package pagecache

import (
	"fmt"
)

// PageFetchError wraps a fetch failure with the page position it occurred at.
// Pages before Index were assembled successfully before the run stopped.
type PageFetchError struct {
	Index int
	Key   string
	Err   error
}

func (e *PageFetchError) Error() string {
	return fmt.Sprintf("fetch page %d (key %q): %v", e.Index, e.Key, e.Err)
}

func (e *PageFetchError) Unwrap() error { return e.Err }

// KeySerializeError reports a key descriptor that could not be turned
// into a stable string key.
type KeySerializeError struct {
	Index int
	Err   error
}

func (e *KeySerializeError) Error() string {
	return fmt.Sprintf("serialize key for page %d: %v", e.Index, e.Err)
}

func (e *KeySerializeError) Unwrap() error { return e.Err }
