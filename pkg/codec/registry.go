package codec

import (
	"slices"
	"sync"

	"github.com/matzehuels/diagrams/pkg/diagram"
	"github.com/matzehuels/diagrams/pkg/diagram/erd"
	"github.com/matzehuels/diagrams/pkg/diagram/flowchart"
	"github.com/matzehuels/diagrams/pkg/diagram/gitgraph"
	"github.com/matzehuels/diagrams/pkg/diagram/pie"
	errs "github.com/matzehuels/diagrams/pkg/errors"
)

// BaseKind is the abstract kind every diagram shares. Envelopes of type
// "base" resolve to it and fail with TYPE_MISMATCH.
const BaseKind = "Base"

// LoadFunc rebuilds a diagram from an envelope's data payload.
type LoadFunc func(data []byte, version diagram.Version, checksum string, opts ...diagram.Option) (diagram.Diagram, error)

// Loader adapts a concrete Load function to a [LoadFunc].
func Loader[D diagram.Diagram](load func([]byte, diagram.Version, string, ...diagram.Option) (D, error)) LoadFunc {
	return func(data []byte, version diagram.Version, checksum string, opts ...diagram.Option) (diagram.Diagram, error) {
		d, err := load(data, version, checksum, opts...)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
}

// Registry maps diagram kinds to load functions. It is safe for concurrent
// use; registration normally happens once at startup.
type Registry struct {
	mu       sync.RWMutex
	loaders  map[string]LoadFunc
	abstract map[string]bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		loaders:  make(map[string]LoadFunc),
		abstract: make(map[string]bool),
	}
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	r := NewRegistry()
	for kind, fn := range map[string]LoadFunc{
		gitgraph.Kind:  Loader(gitgraph.Load),
		flowchart.Kind: Loader(flowchart.Load),
		pie.Kind:       Loader(pie.Load),
		erd.Kind:       Loader(erd.Load),
	} {
		if err := r.Register(kind, fn); err != nil {
			panic(err)
		}
	}
	if err := r.RegisterAbstract(BaseKind); err != nil {
		panic(err)
	}
	return r
})

// DefaultRegistry returns the shared registry holding every diagram kind
// in this module.
func DefaultRegistry() *Registry { return defaultRegistry() }

// Register adds a loadable kind. The kind must survive the round trip
// through its envelope type name, must not be registered yet, and fn must
// not be nil.
func (r *Registry) Register(kind string, fn LoadFunc) error {
	if fn == nil {
		return errs.New(errs.ErrCodeInvalidInput, "nil load function for kind %q", kind)
	}
	return r.add(kind, fn)
}

// RegisterAbstract adds a kind that is recognised but cannot be loaded.
func (r *Registry) RegisterAbstract(kind string) error {
	return r.add(kind, nil)
}

func (r *Registry) add(kind string, fn LoadFunc) error {
	if err := errs.ValidateName("kind", kind); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "register kind")
	}
	if back := diagram.KindName(diagram.TypeName(kind)); back != kind {
		return errs.New(errs.ErrCodeInvalidInput,
			"kind %q does not round-trip through type %q (got %q)", kind, diagram.TypeName(kind), back)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.loaders[kind]; ok || r.abstract[kind] {
		return errs.New(errs.ErrCodeInvalidInput, "kind %q already registered", kind)
	}
	if fn == nil {
		r.abstract[kind] = true
		return nil
	}
	r.loaders[kind] = fn
	return nil
}

// Resolve returns the load function for an envelope type name.
func (r *Registry) Resolve(typeName string) (LoadFunc, error) {
	if err := errs.ValidateTypeName(typeName); err != nil {
		return nil, err
	}
	kind := diagram.KindName(typeName)

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.abstract[kind] {
		return nil, errs.New(errs.ErrCodeTypeMismatch, "type %q (%s) is not a concrete diagram type", typeName, kind)
	}
	fn, ok := r.loaders[kind]
	if !ok {
		return nil, errs.New(errs.ErrCodeUnknownType, "unknown diagram type %q", typeName)
	}
	return fn, nil
}

// Kinds returns the loadable kinds in sorted order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.loaders))
	for k := range r.loaders {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}
