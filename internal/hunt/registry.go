package hunt

import (
	"fmt"
	"sort"
	"sync"
)

// Factory builds an adapter. decode fills the adapter config struct from the
// configuration source.
type Factory func(deps Deps, decode func(target any) error) (Adapter, error)

type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory. Registering a platform twice panics.
func (r *Registry) Register(platform string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.factories[platform]; ok {
		panic(fmt.Sprintf("hunt: platform %q registered twice", platform))
	}
	r.factories[platform] = f
}

func (r *Registry) Platforms() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	platforms := make([]string, 0, len(r.factories))
	for p := range r.factories {
		platforms = append(platforms, p)
	}
	sort.Strings(platforms)
	return platforms
}

// Build decodes the platform settings and constructs the adapter. A platform
// with enabled set to false yields ErrDisabled.
func (r *Registry) Build(platform string, deps Deps, decode func(target any) error) (Adapter, error) {
	r.mu.RLock()
	f, ok := r.factories[platform]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlatform, platform)
	}

	if decode == nil {
		decode = func(any) error { return nil }
	}

	settings := Settings{Enabled: true}
	if err := decode(&settings); err != nil {
		return nil, fmt.Errorf("decode %s settings: %w", platform, err)
	}
	if !settings.Enabled {
		return nil, fmt.Errorf("%w: %s", ErrDisabled, platform)
	}

	a, err := f(deps, decode)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", platform, err)
	}
	return a, nil
}
