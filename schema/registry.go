// Package schema keeps JSON schemas for the documents extcompat reads and
// validates decoded documents against them. Schemas are either reflected
// from Go types or supplied as raw JSON.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	validator "github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrUnknownKind is returned when no schema is registered for a kind.
var ErrUnknownKind = errors.New("unknown schema kind")

// Registry stores schemas by kind and compiles them on first use.
type Registry struct {
	schemas   map[string]string
	compiled  map[string]*validator.Schema
	reflector *jsonschema.Reflector
	mu        sync.RWMutex
}

// RegistryOption configures the Registry.
type RegistryOption func(*Registry)

// WithFieldNameTag selects the struct tag used for property names when
// reflecting Go types. Default: "json".
func WithFieldNameTag(tag string) RegistryOption {
	return func(r *Registry) {
		r.reflector.FieldNameTag = tag
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		schemas:  make(map[string]string),
		compiled: make(map[string]*validator.Schema),
		reflector: &jsonschema.Reflector{
			ExpandedStruct:             true,
			Anonymous:                  true,
			RequiredFromJSONSchemaTags: true,
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a schema for kind. model is a Go struct (or pointer to one)
// to reflect, or a raw JSON schema as string, []byte or map.
func (r *Registry) Register(kind string, model any) error {
	doc, err := r.render(model)
	if err != nil {
		return fmt.Errorf("schema %q: %w", kind, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.schemas[kind]; exists {
		return fmt.Errorf("schema kind already registered: %s", kind)
	}
	r.schemas[kind] = doc
	return nil
}

// MustRegister is Register that panics on error, for package init.
func (r *Registry) MustRegister(kind string, model any) *Registry {
	if err := r.Register(kind, model); err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) render(model any) (string, error) {
	switch v := model.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("marshal schema map: %w", err)
		}
		return string(b), nil
	}

	t := reflect.TypeOf(model)
	if t == nil || !(t.Kind() == reflect.Struct || (t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct)) {
		return "", fmt.Errorf("unsupported schema model %T", model)
	}

	b, err := json.MarshalIndent(r.reflector.Reflect(model), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal generated schema: %w", err)
	}
	return string(b), nil
}

// GetSchema returns the JSON schema for kind.
func (r *Registry) GetSchema(kind string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[kind]
	return s, ok
}

// List returns all registered kinds in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.schemas))
	for k := range r.schemas {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r *Registry) compile(kind string) (*validator.Schema, error) {
	r.mu.RLock()
	compiled, ok := r.compiled[kind]
	doc, registered := r.schemas[kind]
	r.mu.RUnlock()
	if ok {
		return compiled, nil
	}
	if !registered {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	url := "mem://schemas/" + kind + ".json"
	c := validator.NewCompiler()
	if err := c.AddResource(url, strings.NewReader(doc)); err != nil {
		return nil, fmt.Errorf("loading schema %q: %w", kind, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compiling schema %q: %w", kind, err)
	}

	r.mu.Lock()
	r.compiled[kind] = compiled
	r.mu.Unlock()
	return compiled, nil
}

// Validate checks doc against the schema for kind. doc may be any value
// that marshals to JSON; it is normalized before validation.
func (r *Registry) Validate(kind string, doc any) error {
	s, err := r.compile(kind)
	if err != nil {
		return err
	}

	v, err := Normalize(doc)
	if err != nil {
		return err
	}

	if err := s.Validate(v); err != nil {
		var verr *validator.ValidationError
		if errors.As(err, &verr) {
			return &ValidationError{Kind: kind, Violations: violations(verr)}
		}
		return fmt.Errorf("validating %s: %w", kind, err)
	}
	return nil
}

// ValidateJSON decodes data and validates it against the schema for kind.
func (r *Registry) ValidateJSON(kind string, data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("decoding %s: %w", kind, err)
	}
	return r.Validate(kind, v)
}

// Normalize round-trips v through JSON so that it only contains the types
// the validator understands: maps keyed by string, slices, json.Number,
// strings, bools and nil.
func Normalize(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("normalizing document: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("normalizing document: %w", err)
	}
	return out, nil
}

// ValidationError lists schema violations as "location: message".
type ValidationError struct {
	Kind       string
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Kind, strings.Join(e.Violations, "; "))
}

// violations flattens the validator's error tree to its leaves.
func violations(err *validator.ValidationError) []string {
	if len(err.Causes) == 0 {
		loc := err.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return []string{loc + ": " + err.Message}
	}
	var out []string
	for _, c := range err.Causes {
		out = append(out, violations(c)...)
	}
	return out
}
