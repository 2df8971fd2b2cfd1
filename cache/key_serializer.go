package cache

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// MaxKeyLength bounds the keys the cache accepts. Serialized keys longer than
// this are compacted to the method name plus a hash of the arguments.
const MaxKeyLength = 256

// ValidKey reports whether key can be used for caching. Blank keys, keys with
// control characters and keys longer than MaxKeyLength are rejected.
func ValidKey(key string) bool {
	if strings.TrimSpace(key) == "" || len(key) > MaxKeyLength {
		return false
	}
	for _, r := range key {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// defaultKeySerializer walks arguments with reflection and renders them in a
// deterministic form: map keys are sorted, pointers are dereferenced and only
// exported struct fields are included.
type defaultKeySerializer struct{}

// NewDefaultKeySerializer creates a new instance of the default key serializer.
func NewDefaultKeySerializer() KeySerializer {
	return &defaultKeySerializer{}
}

// SerializeKey joins method and the rendered args with KeySeparator.
func (s *defaultKeySerializer) SerializeKey(method string, args ...any) string {
	if len(args) == 0 {
		return method
	}

	parts := make([]string, 0, len(args))
	for _, arg := range args {
		parts = append(parts, s.render(reflect.ValueOf(arg)))
	}

	joined := strings.Join(parts, KeySeparator)
	key := method + KeySeparator + joined
	if len(key) <= MaxKeyLength {
		return key
	}
	// The method prefix stays readable so prefix invalidation keeps working.
	return fmt.Sprintf("%s%sh:%016x", method, KeySeparator, xxhash.Sum64String(joined))
}

func (s *defaultKeySerializer) render(v reflect.Value) string {
	if !v.IsValid() {
		return "nil"
	}

	if t, ok := v.Interface().(time.Time); ok {
		return t.UTC().Format(time.RFC3339Nano)
	}

	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return "nil"
		}
		return s.render(v.Elem())
	case reflect.Func, reflect.Chan:
		if v.IsNil() {
			return "nil"
		}
		return fmt.Sprintf("%s:%p", v.Kind(), v.Interface())
	case reflect.Slice:
		if v.IsNil() {
			return "slice:nil"
		}
		return s.renderList("slice", v)
	case reflect.Array:
		return s.renderList("array", v)
	case reflect.Map:
		if v.IsNil() {
			return "map:nil"
		}
		return s.renderMap(v)
	case reflect.Struct:
		return s.renderStruct(v)
	}
	return fmt.Sprintf("%v", v.Interface())
}

func (s *defaultKeySerializer) renderList(label string, v reflect.Value) string {
	parts := make([]string, v.Len())
	for i := range parts {
		parts[i] = s.render(v.Index(i))
	}
	return fmt.Sprintf("%s[%d]:{%s}", label, len(parts), strings.Join(parts, ","))
}

func (s *defaultKeySerializer) renderMap(v reflect.Value) string {
	pairs := make([]string, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		pairs = append(pairs, s.render(iter.Key())+"="+s.render(iter.Value()))
	}
	sort.Strings(pairs)
	return fmt.Sprintf("map[%d]:{%s}", len(pairs), strings.Join(pairs, ","))
}

func (s *defaultKeySerializer) renderStruct(v reflect.Value) string {
	t := v.Type()
	parts := make([]string, 0, v.NumField())
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		parts = append(parts, field.Name+":"+s.render(v.Field(i)))
	}
	return fmt.Sprintf("struct:{%s}", strings.Join(parts, ","))
}
