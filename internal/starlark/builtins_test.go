package starlark

import (
	"testing"

	"github.com/leapstack-labs/featdesign/internal/design"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredeclared(t *testing.T) {
	ns := design.Namespace{
		"tr":       2.0,
		"ev_count": 1,
		"evs":      []design.Record{{"title": "bio"}},
	}

	globals, err := Predeclared(ns)
	require.NoError(t, err)
	assert.Len(t, globals, 3)
	for _, key := range []string{"tr", "ev_count", "evs"} {
		_, ok := globals[key]
		assert.True(t, ok, "global %q not found", key)
	}
	assert.Equal(t, "2.0", globals["tr"].String())
}

func TestPredeclared_UnsupportedValue(t *testing.T) {
	_, err := Predeclared(design.Namespace{"when": struct{}{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `namespace key "when"`)
}
