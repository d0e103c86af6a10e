package config

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/leapstack-labs/featdesign/internal/design"
)

// ParseStim parses a --stim value of the form NAME:FILE:PARAMS, where PARAMS
// is a comma-separated list such as "model=gamma, filter=true". The model
// parameter is required.
func ParseStim(value string) (EVConfig, error) {
	name, rest, ok := strings.Cut(value, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return EVConfig{}, fmt.Errorf("%w: --stim %q: want NAME:FILE:PARAMS", design.ErrValidation, value)
	}

	path, params := rest, ""
	if i := strings.LastIndex(rest, ":"); i >= 0 && strings.Contains(rest[i+1:], "=") {
		path, params = rest[:i], rest[i+1:]
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return EVConfig{}, fmt.Errorf("%w: --stim %q: timing file is required", design.ErrValidation, value)
	}

	ev := EVConfig{Title: name, File: path}
	values, err := parseParams(params)
	if err != nil {
		return EVConfig{}, fmt.Errorf("--stim %s: %w", name, err)
	}
	for key, v := range values {
		switch key {
		case "model":
			kind, err := design.ParseModelKind(v)
			if err != nil {
				return EVConfig{}, fmt.Errorf("--stim %s: %w", name, err)
			}
			ev.Model = &kind
		case "filter":
			b, ok := v.(bool)
			if !ok {
				return EVConfig{}, fmt.Errorf("%w: --stim %s: filter must be true or false", design.ErrValidation, name)
			}
			ev.Filter = &b
		case "derivative":
			b, ok := v.(bool)
			if !ok {
				return EVConfig{}, fmt.Errorf("%w: --stim %s: derivative must be true or false", design.ErrValidation, name)
			}
			ev.Derivative = b
		default:
			return EVConfig{}, fmt.Errorf("%w: --stim %s: unknown parameter %q", design.ErrValidation, name, key)
		}
	}
	if ev.Model == nil {
		return EVConfig{}, fmt.Errorf("%w: --stim %s: model is required", design.ErrValidation, name)
	}
	return ev, nil
}

// parseParams splits "k=v, k=v" into a map, turning true/false into bools
// and numeric values into float64.
func parseParams(s string) (map[string]any, error) {
	out := map[string]any{}
	if strings.TrimSpace(s) == "" {
		return out, nil
	}
	for _, pair := range strings.Split(s, ",") {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		raw = strings.TrimSpace(raw)
		if !ok || key == "" || raw == "" {
			return nil, fmt.Errorf("%w: malformed parameter %q", design.ErrValidation, strings.TrimSpace(pair))
		}
		if _, dup := out[key]; dup {
			return nil, fmt.Errorf("%w: parameter %q given twice", design.ErrValidation, key)
		}
		out[key] = coerce(raw)
	}
	return out, nil
}

func coerce(raw string) any {
	switch strings.ToLower(raw) {
	case "true":
		return true
	case "false":
		return false
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

// ParseGLT parses a --glt value of the form NAME:EXPR. EXPR may carry the
// AFNI "SYM:" prefix.
func ParseGLT(value string) (ContrastConfig, error) {
	name, expr, ok := strings.Cut(value, ":")
	name = strings.TrimSpace(name)
	expr = strings.TrimSpace(expr)
	if !ok || name == "" || expr == "" {
		return ContrastConfig{}, fmt.Errorf("%w: --glt %q: want NAME:EXPR", design.ErrValidation, value)
	}
	return ContrastConfig{Title: name, Expr: expr}, nil
}

// LoadGLTFile reads literal contrasts from a CSV file: one contrast per
// record, the title followed by one weight per EV. Lines starting with #
// are skipped.
func LoadGLTFile(path string) ([]ContrastConfig, error) {
	f, err := os.Open(path) //nolint:gosec // path is the contrast file the user named
	if err != nil {
		return nil, fmt.Errorf("open gltfile: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ReadGLT(f, path)
}

// ReadGLT parses GLT CSV records from r. name is used in error messages.
func ReadGLT(r io.Reader, name string) ([]ContrastConfig, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var contrasts []ContrastConfig
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", design.ErrValidation, name, err)
		}
		line, _ := reader.FieldPos(0)

		title := strings.TrimSpace(record[0])
		if title == "" {
			return nil, fmt.Errorf("%w: %s:%d: contrast title is empty", design.ErrValidation, name, line)
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("%w: %s:%d: contrast %q has no weights", design.ErrValidation, name, line, title)
		}

		weights := make([]float64, 0, len(record)-1)
		for _, field := range record[1:] {
			w, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s:%d: contrast %q: bad weight %q", design.ErrValidation, name, line, title, field)
			}
			weights = append(weights, w)
		}
		contrasts = append(contrasts, ContrastConfig{Title: title, Weights: weights})
	}
	return contrasts, nil
}
