package docgen

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// MinitRendererRegistry maps output formats to minit renderers. Each format
// can be claimed once.
type MinitRendererRegistry struct {
	mu     sync.RWMutex
	byType map[Format]MinitRenderer
}

// NewMinitRendererRegistry creates an empty registry.
func NewMinitRendererRegistry() *MinitRendererRegistry {
	return &MinitRendererRegistry{byType: map[Format]MinitRenderer{}}
}

// Register claims format for renderer.
func (r *MinitRendererRegistry) Register(format Format, renderer MinitRenderer) error {
	switch {
	case format == "":
		return NewError(KindValidation, "renderer format is required", nil)
	case renderer == nil:
		return NewError(KindValidation, "renderer is required", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byType[format]; taken {
		return NewError(KindValidation, fmt.Sprintf("format %q already has a minit renderer", format), nil)
	}
	r.byType[format] = renderer
	return nil
}

// Resolve looks up the renderer for format.
func (r *MinitRendererRegistry) Resolve(format Format) (MinitRenderer, bool) {
	r.mu.RLock()
	renderer, ok := r.byType[format]
	r.mu.RUnlock()
	return renderer, ok
}

// Formats returns the registered formats sorted by name.
func (r *MinitRendererRegistry) Formats() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.byType))
}

func (r *MinitRendererRegistry) unsupported(format Format) error {
	formats := r.Formats()
	names := make([]string, 0, len(formats))
	for _, f := range formats {
		names = append(names, string(f))
	}
	available := strings.Join(names, ", ")
	if available == "" {
		available = "none"
	}
	return NewError(KindUnsupported, fmt.Sprintf("no minit renderer for format %q (available: %s)", format, available), nil)
}
