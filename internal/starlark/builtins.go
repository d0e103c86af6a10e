package starlark

import (
	"fmt"
	"maps"
	"slices"

	"github.com/leapstack-labs/featdesign/internal/design"
	"go.starlark.net/starlark"
)

// Predeclared converts a design namespace into template globals. Every
// namespace key becomes a global of the same name.
func Predeclared(ns design.Namespace) (starlark.StringDict, error) {
	globals := make(starlark.StringDict, len(ns))
	for _, name := range slices.Sorted(maps.Keys(ns)) {
		v, err := GoToStarlark(ns[name])
		if err != nil {
			return nil, fmt.Errorf("namespace key %q: %w", name, err)
		}
		globals[name] = v
	}
	return globals, nil
}
