package golang

// Registry records the nicknames already emitted during one generation run.
// Each Walker owns its own Registry, so independent runs never share state.
type Registry struct {
	seen map[string]bool
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{seen: make(map[string]bool)}
}

// Has reports whether nickname was already emitted.
func (r *Registry) Has(nickname string) bool {
	return r.seen[nickname]
}

// Add records nickname as emitted.
func (r *Registry) Add(nickname string) {
	r.seen[nickname] = true
}

// Len returns the number of distinct nicknames emitted.
func (r *Registry) Len() int {
	return len(r.seen)
}
