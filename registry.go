package apiclient

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"
)

// Names of the presets seeded by NewRegistry.
const (
	PresetDefault  = "default"
	PresetAuth     = "auth"
	PresetUpload   = "upload"
	PresetExternal = "external"
)

// Registry manages named Config presets and caches constructed clients by
// (preset, override fingerprint). It replaces a process-wide singleton:
// callers that want shared clients hold one shared *Registry. Safe for
// concurrent use; construction is exactly-once per cache key.
type Registry struct {
	mu      sync.Mutex
	presets map[string]Config
	clients map[string]*Client
	// cross-cutting options applied to every constructed client (logger,
	// metrics); they run before the preset config so explicit settings win.
	baseOptions []Option
}

// NewRegistry creates a registry seeded with the standard presets:
//
//	default  – 10s timeout, 3 retries, JSON headers
//	auth     – 15s timeout, 3 retries, JSON headers; attach Auth via overrides
//	upload   – 60s timeout, 1 retry, no Content-Type so the transport can
//	           set a multipart boundary
//	external – 30s timeout, 2 retries, 2s base delay for third-party APIs
func NewRegistry(baseOptions ...Option) *Registry {
	r := &Registry{
		presets:     make(map[string]Config),
		clients:     make(map[string]*Client),
		baseOptions: baseOptions,
	}

	jsonHeaders := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
	r.presets[PresetDefault] = Config{
		Timeout:        10 * time.Second,
		MaxRetries:     Retries(3),
		RetryBaseDelay: time.Second,
		Headers:        jsonHeaders,
	}
	r.presets[PresetAuth] = Config{
		Timeout:        15 * time.Second,
		MaxRetries:     Retries(3),
		RetryBaseDelay: time.Second,
		Headers:        jsonHeaders,
	}
	r.presets[PresetUpload] = Config{
		Timeout:        60 * time.Second,
		MaxRetries:     Retries(1),
		RetryBaseDelay: 2 * time.Second,
		Headers:        map[string]string{"Accept": "application/json"},
	}
	r.presets[PresetExternal] = Config{
		Timeout:        30 * time.Second,
		MaxRetries:     Retries(2),
		RetryBaseDelay: 2 * time.Second,
		Headers:        map[string]string{"Accept": "application/json"},
	}

	return r
}

// Client returns the client for the named preset with overrides merged over
// it. Repeated calls with an identical preset and overrides return the same
// instance; differing overrides produce distinct instances. Overrides merge
// headers key-wise and concatenate interceptor lists (preset entries
// first), so preset cross-cutting behavior survives caller interceptors.
func (r *Registry) Client(name string, overrides *Config) (*Client, error) {
	key := cacheKey(name, overrides)

	r.mu.Lock()
	defer r.mu.Unlock()

	if client, ok := r.clients[key]; ok {
		return client, nil
	}

	preset, ok := r.presets[name]
	if !ok {
		return nil, fmt.Errorf("apiclient: unknown preset %q", name)
	}

	effective := preset.merge(overrides)
	opts := make([]Option, 0, len(r.baseOptions)+8)
	opts = append(opts, r.baseOptions...)
	opts = append(opts, effective.options()...)
	client := New(opts...)
	if err := client.ValidationError(); err != nil {
		return nil, err
	}

	r.clients[key] = client
	return client, nil
}

// RegisterPreset adds or replaces a named preset. Cached clients built from
// a previous definition are evicted.
func (r *Registry) RegisterPreset(name string, cfg Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.presets[name] = cfg
	r.evictLocked(name)
}

// UpdatePreset merges a partial config into the named preset and evicts
// matching cache entries. Clients already handed out are unaffected; only
// future lookups see the update.
func (r *Registry) UpdatePreset(name string, patch Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	preset, ok := r.presets[name]
	if !ok {
		return fmt.Errorf("apiclient: unknown preset %q", name)
	}
	r.presets[name] = preset.merge(&patch)
	r.evictLocked(name)
	return nil
}

// Presets returns the registered preset names.
func (r *Registry) Presets() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.presets))
	for name := range r.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ClearCache evicts every cached client.
func (r *Registry) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients = make(map[string]*Client)
}

// ClearPresetCache evicts cached clients for one preset.
func (r *Registry) ClearPresetCache(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evictLocked(name)
}

func (r *Registry) evictLocked(name string) {
	prefix := name + "\x00"
	for key := range r.clients {
		if strings.HasPrefix(key, prefix) {
			delete(r.clients, key)
		}
	}
}

func cacheKey(name string, overrides *Config) string {
	return name + "\x00" + fingerprint(overrides)
}

// fingerprint serializes overrides deterministically. JSON map keys are
// emitted sorted, auth contributes its shape (never credentials), and
// interceptors contribute their function identities so configs with
// different behavior never collide.
func fingerprint(overrides *Config) string {
	if overrides == nil {
		return "{}"
	}

	shape := map[string]any{}
	if overrides.BaseURL != "" {
		shape["baseURL"] = overrides.BaseURL
	}
	if overrides.Timeout != 0 {
		shape["timeoutMs"] = overrides.Timeout.Milliseconds()
	}
	if overrides.MaxRetries != nil {
		shape["maxRetries"] = *overrides.MaxRetries
	}
	if overrides.RetryBaseDelay != 0 {
		shape["retryBaseDelayMs"] = overrides.RetryBaseDelay.Milliseconds()
	}
	if len(overrides.Headers) > 0 {
		shape["headers"] = overrides.Headers
	}
	if overrides.Auth != nil {
		shape["auth"] = overrides.Auth.fingerprint()
	}
	if !overrides.Interceptors.isEmpty() {
		shape["interceptors"] = map[string][]uintptr{
			"request":  funcIDs(overrides.Interceptors.Request),
			"response": funcIDs(overrides.Interceptors.Response),
			"error":    funcIDs(overrides.Interceptors.Error),
		}
	}

	data, err := json.Marshal(shape)
	if err != nil {
		// Marshal of the shape map cannot fail for these value types.
		return fmt.Sprintf("%v", shape)
	}
	return string(data)
}

func funcIDs[T any](fns []T) []uintptr {
	ids := make([]uintptr, len(fns))
	for i, fn := range fns {
		ids[i] = reflect.ValueOf(fn).Pointer()
	}
	return ids
}
