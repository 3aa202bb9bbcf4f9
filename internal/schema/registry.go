package schema

import (
	"fmt"
	"reflect"
	"sort"
)

// Enum is implemented by string-backed types with a closed value set. Types
// implementing it are emitted as string literal unions instead of plain strings.
type Enum interface {
	EnumValues() []string
}

var enumType = reflect.TypeOf((*Enum)(nil)).Elem()

type modelEntry struct {
	name        string
	typ         reflect.Type
	description string
	allowExtra  bool
}

// ModelOption adjusts how a registered model is rendered.
type ModelOption func(*modelEntry)

// AllowExtra keeps additionalProperties open for the model instead of the
// default closed-object schema.
func AllowExtra() ModelOption {
	return func(e *modelEntry) { e.allowExtra = true }
}

// WithDescription attaches a schema description to the model.
func WithDescription(description string) ModelOption {
	return func(e *modelEntry) { e.description = description }
}

// Registry collects the model types exposed to schema generation.
type Registry struct {
	entries []modelEntry
	index   map[string]int
}

// NewRegistry returns an empty model registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register adds a model type. The model may be a struct value or a pointer to
// one. Registering the same type twice is a no-op; a different type under an
// already-registered name is an error.
func (r *Registry) Register(model any, opts ...ModelOption) error {
	typ := reflect.TypeOf(model)
	for typ != nil && typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ == nil || typ.Kind() != reflect.Struct {
		return fmt.Errorf("register model: expected struct, got %T", model)
	}
	name := typ.Name()
	if name == "" {
		return fmt.Errorf("register model: anonymous structs are not supported")
	}
	if existing, ok := r.index[name]; ok {
		if r.entries[existing].typ == typ {
			return nil
		}
		return fmt.Errorf("register model: name %q already bound to %s", name, r.entries[existing].typ)
	}

	entry := modelEntry{name: name, typ: typ}
	for _, opt := range opts {
		opt(&entry)
	}
	r.index[name] = len(r.entries)
	r.entries = append(r.entries, entry)
	return nil
}

// MustRegister registers the provided models and panics on conflicts. It is
// intended for static model sets assembled at startup.
func (r *Registry) MustRegister(models ...any) {
	for _, model := range models {
		if err := r.Register(model); err != nil {
			panic(err)
		}
	}
}

// Names returns the registered model names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for _, entry := range r.entries {
		names = append(names, entry.name)
	}
	sort.Strings(names)
	return names
}

// Len reports the number of registered models.
func (r *Registry) Len() int {
	return len(r.entries)
}
