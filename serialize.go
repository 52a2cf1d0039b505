package pagecache

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/unkn0wn-root/pagecache/internal/util"
)

// keySeparator delimits segments of composite key descriptors.
const keySeparator = "::"

// maxKeyLen is the longest raw key kept verbatim; longer keys are
// replaced by a digest (see util.CompactKey).
const maxKeyLen = 256

// serializeKey turns a key descriptor into a stable string key plus the
// fetch arguments derived from it.
//
// An empty key ("", nil, nil) means "no page here": a nil, false, empty
// string, nil pointer, or empty slice descriptor all stop the sequence
// at that position.
//
//   - string: the key itself, no extra args.
//   - slice/array: segments joined by "::", elements become fetch args.
//   - anything else: canonical reflection form, the descriptor itself
//     becomes the single fetch arg.
//
// The same descriptor always yields the same key across processes and
// runs; descriptors that cannot be made stable (funcs, channels) are an
// error.
func serializeKey(descriptor any) (string, []any, error) {
	if descriptor == nil {
		return "", nil, nil
	}

	switch d := descriptor.(type) {
	case string:
		if d == "" {
			return "", nil, nil
		}
		return util.CompactKey(d, maxKeyLen), nil, nil
	case bool:
		if !d {
			return "", nil, nil
		}
		return "true", []any{true}, nil
	}

	rv := reflect.ValueOf(descriptor)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return "", nil, nil
		}
		return serializeKey(rv.Elem().Interface())
	case reflect.Func, reflect.Chan:
		return "", nil, fmt.Errorf("pagecache: unstable key descriptor kind %s", rv.Kind())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && (rv.IsNil() || rv.Len() == 0) {
			return "", nil, nil
		}
		parts := make([]string, rv.Len())
		args := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elem := rv.Index(i).Interface()
			s, err := canonicalize(elem)
			if err != nil {
				return "", nil, err
			}
			parts[i] = s
			args[i] = elem
		}
		return util.CompactKey(strings.Join(parts, keySeparator), maxKeyLen), args, nil
	}

	s, err := canonicalize(descriptor)
	if err != nil {
		return "", nil, err
	}
	return util.CompactKey(s, maxKeyLen), []any{descriptor}, nil
}

// canonicalize renders a value deterministically: pointers are
// dereferenced, map keys sorted, struct fields listed by name.
func canonicalize(v any) (string, error) {
	if v == nil {
		return "nil", nil
	}

	rv := reflect.ValueOf(v)
	rt := reflect.TypeOf(v)

	switch rt.Kind() {
	case reflect.Func, reflect.Chan:
		// pointer formatting would differ across runs
		return "", fmt.Errorf("pagecache: cannot serialize %s in key descriptor", rt.Kind())
	case reflect.Ptr:
		if rv.IsNil() {
			return "nil", nil
		}
		return canonicalize(rv.Elem().Interface())
	case reflect.Interface:
		if rv.IsNil() {
			return "nil", nil
		}
		return canonicalize(rv.Elem().Interface())
	case reflect.Slice:
		if rv.IsNil() {
			return "slice:nil", nil
		}
		return canonicalizeList("slice", rv)
	case reflect.Array:
		return canonicalizeList("array", rv)
	case reflect.Map:
		if rv.IsNil() {
			return "map:nil", nil
		}
		return canonicalizeMap(rv)
	case reflect.Struct:
		return canonicalizeStruct(rv, rt)
	}

	switch rt.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.String:
		return fmt.Sprintf("%v", v), nil
	}

	// last resort for exotic kinds
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("pagecache: cannot serialize %s in key descriptor: %w", rt.String(), err)
	}
	return "json:" + string(data), nil
}

func canonicalizeList(kind string, rv reflect.Value) (string, error) {
	parts := make([]string, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		s, err := canonicalize(rv.Index(i).Interface())
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return fmt.Sprintf("%s[%d]:{%s}", kind, rv.Len(), strings.Join(parts, ",")), nil
}

func canonicalizeMap(rv reflect.Value) (string, error) {
	type pair struct{ k, v string }
	pairs := make([]pair, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		ks, err := canonicalize(iter.Key().Interface())
		if err != nil {
			return "", err
		}
		vs, err := canonicalize(iter.Value().Interface())
		if err != nil {
			return "", err
		}
		pairs = append(pairs, pair{k: ks, v: vs})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].k < pairs[j].k })

	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.k + "=" + p.v
	}
	return fmt.Sprintf("map[%d]:{%s}", len(out), strings.Join(out, ",")), nil
}

func canonicalizeStruct(rv reflect.Value, rt reflect.Type) (string, error) {
	parts := make([]string, 0, rv.NumField())
	for i := 0; i < rv.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		s, err := canonicalize(rv.Field(i).Interface())
		if err != nil {
			return "", err
		}
		parts = append(parts, field.Name+":"+s)
	}
	return fmt.Sprintf("struct:{%s}", strings.Join(parts, ",")), nil
}
