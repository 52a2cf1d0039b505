// Package codec defines how page values are (de)serialized for storage.
// A pagecache sequence stores every page independently through its Store;
// the Codec turns the caller's value type into the bytes the Store holds.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
