package apiclient

import (
	"net/textproto"
	"sort"
)

// Headers is an ordered, case-insensitive header collection. Keys keep their
// insertion position across updates so merged configurations serialize
// deterministically and tests can assert exact wire order.
type Headers struct {
	keys   []string
	values map[string]string
}

// NewHeaders creates an empty header collection.
func NewHeaders() *Headers {
	return &Headers{values: make(map[string]string)}
}

// HeadersFrom builds a collection from a plain map. Keys are inserted in
// sorted order so the result is deterministic regardless of map iteration.
func HeadersFrom(m map[string]string) *Headers {
	h := NewHeaders()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Set(k, m[k])
	}
	return h
}

// Set adds or updates a header. Updating an existing key keeps its original
// position. Returns the receiver for chaining.
func (h *Headers) Set(key, value string) *Headers {
	k := textproto.CanonicalMIMEHeaderKey(key)
	if _, ok := h.values[k]; !ok {
		h.keys = append(h.keys, k)
	}
	h.values[k] = value
	return h
}

// Get returns the value for key and whether it is present.
func (h *Headers) Get(key string) (string, bool) {
	v, ok := h.values[textproto.CanonicalMIMEHeaderKey(key)]
	return v, ok
}

// Has reports whether key is present.
func (h *Headers) Has(key string) bool {
	_, ok := h.values[textproto.CanonicalMIMEHeaderKey(key)]
	return ok
}

// Del removes a header if present.
func (h *Headers) Del(key string) {
	k := textproto.CanonicalMIMEHeaderKey(key)
	if _, ok := h.values[k]; !ok {
		return
	}
	delete(h.values, k)
	for i, existing := range h.keys {
		if existing == k {
			h.keys = append(h.keys[:i], h.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of headers.
func (h *Headers) Len() int {
	return len(h.keys)
}

// Keys returns the header names in insertion order.
func (h *Headers) Keys() []string {
	out := make([]string, len(h.keys))
	copy(out, h.keys)
	return out
}

// Each visits every header in insertion order.
func (h *Headers) Each(fn func(key, value string)) {
	for _, k := range h.keys {
		fn(k, h.values[k])
	}
}

// Clone returns an independent copy preserving order.
func (h *Headers) Clone() *Headers {
	out := &Headers{
		keys:   make([]string, len(h.keys)),
		values: make(map[string]string, len(h.values)),
	}
	copy(out.keys, h.keys)
	for k, v := range h.values {
		out.values[k] = v
	}
	return out
}

// Merge overlays other onto the receiver. Overlapping keys take other's
// value but keep the receiver's position; new keys append in other's order.
func (h *Headers) Merge(other *Headers) *Headers {
	if other == nil {
		return h
	}
	other.Each(func(k, v string) {
		h.Set(k, v)
	})
	return h
}

// Map returns a plain map copy of the headers.
func (h *Headers) Map() map[string]string {
	out := make(map[string]string, len(h.values))
	for k, v := range h.values {
		out[k] = v
	}
	return out
}
