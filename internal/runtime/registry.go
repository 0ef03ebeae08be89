package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/school-grader/school-grader/internal/domain/grading"
)

// Registry dispatches scripts to the module registered for their language.
type Registry struct {
	modules map[grading.Language]Module
}

// NewRegistry builds a registry from the supplied modules. Duplicate or
// missing language identifiers are rejected.
func NewRegistry(modules ...Module) (*Registry, error) {
	registry := &Registry{
		modules: make(map[grading.Language]Module, len(modules)),
	}

	for _, module := range modules {
		if module == nil {
			return nil, fmt.Errorf("runtime module cannot be nil")
		}

		lang := module.Language()
		if lang == "" {
			return nil, fmt.Errorf("runtime module missing language identifier")
		}
		if _, exists := registry.modules[lang]; exists {
			return nil, fmt.Errorf("duplicate runtime module for language %q", lang)
		}
		registry.modules[lang] = module
	}

	if len(registry.modules) == 0 {
		return nil, fmt.Errorf("at least one runtime module must be registered")
	}

	return registry, nil
}

// Prepare delegates to the module responsible for the script's language.
func (r *Registry) Prepare(ctx context.Context, script grading.Script) (PreparedScript, *grading.RunResult, error) {
	module, ok := r.modules[script.Language]
	if !ok {
		return nil, nil, fmt.Errorf("no runtime module for language %q", script.Language)
	}
	return module.Prepare(ctx, script)
}

// Close releases resources held by each module.
func (r *Registry) Close() error {
	var errs []error
	for lang, module := range r.modules {
		if err := module.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s module: %w", lang, err))
		}
	}
	return errors.Join(errs...)
}
