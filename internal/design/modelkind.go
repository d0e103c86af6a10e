package design

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ModelKind is the waveform or basis set used to convolve an EV's timing
// into a regressor. The integer value is the code FEAT expects.
type ModelKind int

// ModelKind codes, in FEAT order.
const (
	ModelNone        ModelKind = iota // 0: no convolution
	ModelGaussian                     // 1
	ModelGamma                        // 2
	ModelDoubleGamma                  // 3
	ModelGammaBasis                   // 4
	ModelSineBasis                    // 5
	ModelFIRBasis                     // 6
)

var modelKindNames = [...]string{
	ModelNone:        "none",
	ModelGaussian:    "gaussian",
	ModelGamma:       "gamma",
	ModelDoubleGamma: "double-gamma",
	ModelGammaBasis:  "gamma-basis",
	ModelSineBasis:   "sine-basis",
	ModelFIRBasis:    "fir-basis",
}

// ModelKinds returns every recognised kind in code order.
func ModelKinds() []ModelKind {
	kinds := make([]ModelKind, len(modelKindNames))
	for i := range modelKindNames {
		kinds[i] = ModelKind(i)
	}
	return kinds
}

// Valid reports whether k is one of the seven recognised kinds.
func (k ModelKind) Valid() bool {
	return k >= ModelNone && k <= ModelFIRBasis
}

// Code returns the canonical integer code.
func (k ModelKind) Code() int { return int(k) }

func (k ModelKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("ModelKind(%d)", int(k))
	}
	return modelKindNames[k]
}

// ParseModelKind maps either a symbolic name ("double-gamma") or a canonical
// code (3, 3.0, "3") to a ModelKind. Names are matched case-insensitively.
func ParseModelKind(v any) (ModelKind, error) {
	switch val := v.(type) {
	case ModelKind:
		if val.Valid() {
			return val, nil
		}
		return 0, invalidModelKind(v)
	case string:
		return parseModelKindString(val)
	case int:
		return modelKindFromCode(int64(val), v)
	case int64:
		return modelKindFromCode(val, v)
	case int32:
		return modelKindFromCode(int64(val), v)
	case uint:
		return modelKindFromCode(int64(val), v)
	case float64:
		return modelKindFromFloat(val, v)
	case float32:
		return ParseModelKind(float64(val))
	default:
		return 0, invalidModelKind(v)
	}
}

func parseModelKindString(s string) (ModelKind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range modelKindNames {
		if n == name {
			return ModelKind(i), nil
		}
	}
	if code, err := strconv.ParseInt(name, 10, 64); err == nil {
		return modelKindFromCode(code, s)
	}
	if f, err := strconv.ParseFloat(name, 64); err == nil {
		return modelKindFromFloat(f, s)
	}
	return 0, invalidModelKind(s)
}

func modelKindFromFloat(f float64, orig any) (ModelKind, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, invalidModelKind(orig)
	}
	return modelKindFromCode(int64(f), orig)
}

func modelKindFromCode(code int64, orig any) (ModelKind, error) {
	k := ModelKind(code)
	if code < 0 || !k.Valid() {
		return 0, invalidModelKind(orig)
	}
	return k, nil
}

func invalidModelKind(v any) error {
	return newError(ErrValidation, "model",
		"%v is not a model kind; use 0-6 or one of %s", v, strings.Join(modelKindNames[:], ", "))
}
