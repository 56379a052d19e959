package registry

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/scopetrace/pkg/domain"
	"github.com/aretw0/scopetrace/pkg/ports"
	"github.com/mitchellh/mapstructure"
)

// Factory builds a sink from a raw option map (usually the "sink" table of a run file).
type Factory func(opts map[string]any) (ports.Sink, error)

// Registry maps format names and file extensions to sink factories.
type Registry struct {
	mu         sync.RWMutex
	factories  map[string]Factory
	extensions map[string]string // ".vcd" -> "vcd"
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories:  make(map[string]Factory),
		extensions: make(map[string]string),
	}
}

// Register adds a format. Names are case-insensitive and extensions include the leading dot.
// If a format with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn Factory, exts ...string) {
	name = strings.ToLower(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = fn
	for _, ext := range exts {
		r.extensions[strings.ToLower(ext)] = name
	}
}

// New looks a format up by name and builds a sink.
func (r *Registry) New(name string, opts map[string]any) (ports.Sink, error) {
	r.mu.RLock()
	fn, ok := r.factories[strings.ToLower(name)]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", domain.ErrUnknownFormat, name, strings.Join(r.Formats(), ", "))
	}
	sink, err := fn(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to configure %s sink: %w", name, err)
	}
	return sink, nil
}

// FormatFor picks the format registered for the extension of path.
func (r *Registry) FormatFor(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	r.mu.RLock()
	name, ok := r.extensions[ext]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: no format for extension %q of %s", domain.ErrUnknownFormat, ext, path)
	}
	return name, nil
}

// Resolve returns format when set, otherwise the format implied by path.
func (r *Registry) Resolve(format, path string) (string, error) {
	if format != "" {
		return strings.ToLower(format), nil
	}
	return r.FormatFor(path)
}

// Formats lists the registered format names in lexical order.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for name := range r.factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Extensions lists the extensions registered for a format.
func (r *Registry) Extensions(name string) []string {
	name = strings.ToLower(name)
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for ext, n := range r.extensions {
		if n == name {
			out = append(out, ext)
		}
	}
	sort.Strings(out)
	return out
}

// DecodeOptions decodes a raw option map into a typed options struct.
// Durations may be given as strings ("5s"); unknown keys are rejected.
func DecodeOptions(in map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(in); err != nil {
		return fmt.Errorf("invalid sink options: %w", err)
	}
	return nil
}
