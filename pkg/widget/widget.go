// Package widget maintains the registry of storefront page widgets a site
// can place on its pages. The server only serves widget metadata; rendering
// happens in the storefront client.
package widget

import (
	"fmt"
	"sort"
	"sync"

	version "github.com/hashicorp/go-version"
)

// Known page types widgets can declare compatibility with.
const (
	PageTypeSite    = "site"
	PageTypeProduct = "product"
)

// Widget describes one installable page widget.
type Widget struct {
	// Name is the stable identifier used in page layouts.
	Name string `json:"name"`
	// DisplayName is shown in the page editor.
	DisplayName string `json:"display_name"`
	// PageTypes lists the page types the widget can be placed on.
	PageTypes []string `json:"page_types"`
	// Compatible is a platform version constraint, e.g. ">= 1.2, < 2.0".
	// Empty means compatible with every version.
	Compatible string `json:"compatible,omitempty"`
	// Shared widgets keep one settings instance across all pages.
	Shared bool `json:"shared"`
	// DefaultSettings seeds the widget's settings when first placed.
	DefaultSettings map[string]any `json:"default_settings,omitempty"`
}

// CompatibleWith reports whether the widget supports the given platform
// version.
func (w *Widget) CompatibleWith(platformVersion string) (bool, error) {
	if w.Compatible == "" {
		return true, nil
	}
	constraint, err := version.NewConstraint(w.Compatible)
	if err != nil {
		return false, fmt.Errorf("invalid constraint %q: %w", w.Compatible, err)
	}
	v, err := version.NewVersion(platformVersion)
	if err != nil {
		return false, fmt.Errorf("invalid version %q: %w", platformVersion, err)
	}
	return constraint.Check(v), nil
}

// SupportsPage reports whether the widget can be placed on the page type.
func (w *Widget) SupportsPage(pageType string) bool {
	for _, pt := range w.PageTypes {
		if pt == pageType {
			return true
		}
	}
	return false
}

// Registry holds the widgets available to a deployment.
type Registry struct {
	mutex   sync.RWMutex
	widgets map[string]Widget
}

// NewRegistry creates a registry pre-populated with the builtin widgets.
func NewRegistry() *Registry {
	r := &Registry{widgets: make(map[string]Widget)}
	for _, w := range builtins() {
		r.widgets[w.Name] = w
	}
	return r
}

// Register adds or replaces a widget.
func (r *Registry) Register(w Widget) error {
	if w.Name == "" {
		return fmt.Errorf("widget name cannot be empty")
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.widgets[w.Name] = w
	return nil
}

// Get returns the named widget.
func (r *Registry) Get(name string) (Widget, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	w, ok := r.widgets[name]
	return w, ok
}

// List returns all widgets sorted by name.
func (r *Registry) List() []Widget {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	out := make([]Widget, 0, len(r.widgets))
	for _, w := range r.widgets {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ListFor returns the widgets usable on the given platform version, sorted
// by name. Widgets with invalid constraints are skipped.
func (r *Registry) ListFor(platformVersion string) []Widget {
	all := r.List()
	out := make([]Widget, 0, len(all))
	for _, w := range all {
		ok, err := w.CompatibleWith(platformVersion)
		if err != nil || !ok {
			continue
		}
		out = append(out, w)
	}
	return out
}
