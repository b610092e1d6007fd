package migration

// Registry collects migration factories from a code bundle. Bundles
// typically call Register from their init functions and the operator
// binary imports the bundle for its side effects.
type Registry struct {
	factories []Factory
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Add(factories ...Factory) {
	r.factories = append(r.factories, factories...)
}

func (r *Registry) Factories() []Factory {
	result := make([]Factory, len(r.factories))
	copy(result, r.factories)
	return result
}

var defaultRegistry = NewRegistry()

// Register adds factories to the default registry.
func Register(factories ...Factory) {
	defaultRegistry.Add(factories...)
}

func DefaultRegistry() *Registry {
	return defaultRegistry
}
