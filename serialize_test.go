package pagecache

import (
	"strings"
	"testing"
)

func TestSerializeKeyString(t *testing.T) {
	key, args, err := serializeKey("feed/1")
	if err != nil {
		t.Fatalf("serializeKey: %v", err)
	}
	if key != "feed/1" || args != nil {
		t.Fatalf("got key=%q args=%v", key, args)
	}
}

func TestSerializeKeyTrueCarriesArg(t *testing.T) {
	key, args, err := serializeKey(true)
	if err != nil {
		t.Fatalf("serializeKey: %v", err)
	}
	if key != "true" {
		t.Fatalf("key: got %q", key)
	}
	if len(args) != 1 || args[0] != true {
		t.Fatalf("true descriptor must be its own fetch arg, got %v", args)
	}
}

func TestSerializeKeyStops(t *testing.T) {
	var nilPtr *int
	for _, desc := range []any{nil, false, "", nilPtr, []string{}, []string(nil)} {
		key, args, err := serializeKey(desc)
		if err != nil {
			t.Fatalf("serializeKey(%v): %v", desc, err)
		}
		if key != "" || args != nil {
			t.Fatalf("serializeKey(%v) should stop, got key=%q args=%v", desc, key, args)
		}
	}
}

func TestSerializeKeyCompositeArgs(t *testing.T) {
	key, args, err := serializeKey([]any{"users", 42})
	if err != nil {
		t.Fatalf("serializeKey: %v", err)
	}
	if key != "users::42" {
		t.Fatalf("key: got %q", key)
	}
	if len(args) != 2 || args[0] != "users" || args[1] != 42 {
		t.Fatalf("args: got %v", args)
	}
}

func TestSerializeKeyMapDeterministic(t *testing.T) {
	a := map[string]int{"page": 1, "limit": 20, "cursor": 7}
	b := map[string]int{"cursor": 7, "limit": 20, "page": 1}

	ka, _, err := serializeKey(a)
	if err != nil {
		t.Fatal(err)
	}
	kb, _, err := serializeKey(b)
	if err != nil {
		t.Fatal(err)
	}
	if ka != kb {
		t.Fatalf("map keys not deterministic: %q vs %q", ka, kb)
	}
}

func TestSerializeKeyStructFields(t *testing.T) {
	type query struct {
		Path  string
		Limit int
		note  string // unexported, must not leak into the key
	}
	k1, args, err := serializeKey(query{Path: "/v1/feed", Limit: 10, note: "x"})
	if err != nil {
		t.Fatal(err)
	}
	k2, _, err := serializeKey(query{Path: "/v1/feed", Limit: 10, note: "y"})
	if err != nil {
		t.Fatal(err)
	}
	if k1 != k2 {
		t.Fatalf("unexported field changed key: %q vs %q", k1, k2)
	}
	if !strings.Contains(k1, "Path") || !strings.Contains(k1, "Limit") {
		t.Fatalf("struct key missing field names: %q", k1)
	}
	if len(args) != 1 {
		t.Fatalf("expected the descriptor itself as single arg, got %v", args)
	}
}

func TestSerializeKeyRejectsFunc(t *testing.T) {
	if _, _, err := serializeKey(func() {}); err == nil {
		t.Fatal("expected error for func descriptor")
	}
	if _, _, err := serializeKey([]any{"seg", func() {}}); err == nil {
		t.Fatal("expected error for func inside composite descriptor")
	}
}

func TestSerializeKeyCompactsLongKeys(t *testing.T) {
	long := strings.Repeat("x", 4096)
	key, _, err := serializeKey(long)
	if err != nil {
		t.Fatal(err)
	}
	if len(key) > maxKeyLen {
		t.Fatalf("long key not compacted: len=%d", len(key))
	}
	if !strings.HasPrefix(key, "#") {
		t.Fatalf("compacted key missing digest marker: %q", key)
	}

	again, _, err := serializeKey(long)
	if err != nil {
		t.Fatal(err)
	}
	if key != again {
		t.Fatalf("compacted key not stable: %q vs %q", key, again)
	}
}
