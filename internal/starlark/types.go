// Package starlark exposes a design namespace to Starlark template expressions.
package starlark

import (
	"fmt"

	"github.com/leapstack-labs/featdesign/internal/design"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// recordConstructor names the struct type records are exposed as.
const recordConstructor = starlark.String("record")

// GoToStarlark converts a Go value to a Starlark value.
// Supported types: string, int, int64, float64, bool, []string, []int, []float64,
// []any, map[string]any, design.Record and []design.Record.
//
// A design.Record becomes an attribute struct so templates can write ev.title;
// a plain map becomes a dict.
func GoToStarlark(v any) (starlark.Value, error) {
	if v == nil {
		return starlark.None, nil
	}

	switch val := v.(type) {
	case string:
		return starlark.String(val), nil

	case int:
		return starlark.MakeInt(val), nil

	case int64:
		return starlark.MakeInt64(val), nil

	case float64:
		return starlark.Float(val), nil

	case bool:
		return starlark.Bool(val), nil

	case []string:
		list := make([]starlark.Value, len(val))
		for i, s := range val {
			list[i] = starlark.String(s)
		}
		return starlark.NewList(list), nil

	case []int:
		list := make([]starlark.Value, len(val))
		for i, n := range val {
			list[i] = starlark.MakeInt(n)
		}
		return starlark.NewList(list), nil

	case []float64:
		list := make([]starlark.Value, len(val))
		for i, f := range val {
			list[i] = starlark.Float(f)
		}
		return starlark.NewList(list), nil

	case []any:
		list := make([]starlark.Value, len(val))
		for i, item := range val {
			sv, err := GoToStarlark(item)
			if err != nil {
				return nil, fmt.Errorf("list index %d: %w", i, err)
			}
			list[i] = sv
		}
		return starlark.NewList(list), nil

	case design.Record:
		return recordToStarlark(val)

	case []design.Record:
		list := make([]starlark.Value, len(val))
		for i, rec := range val {
			sv, err := recordToStarlark(rec)
			if err != nil {
				return nil, fmt.Errorf("list index %d: %w", i, err)
			}
			list[i] = sv
		}
		return starlark.NewList(list), nil

	case map[string]any:
		dict := starlark.NewDict(len(val))
		for k, v := range val {
			sv, err := GoToStarlark(v)
			if err != nil {
				return nil, fmt.Errorf("dict key %q: %w", k, err)
			}
			if err := dict.SetKey(starlark.String(k), sv); err != nil {
				return nil, fmt.Errorf("dict setkey %q: %w", k, err)
			}
		}
		return dict, nil

	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

func recordToStarlark(rec design.Record) (starlark.Value, error) {
	fields := make(starlark.StringDict, len(rec))
	for k, v := range rec {
		sv, err := GoToStarlark(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		fields[k] = sv
	}
	return starlarkstruct.FromStringDict(recordConstructor, fields), nil
}
