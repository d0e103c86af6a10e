package design

// Contrast is a compiled linear combination of EVs.
type Contrast struct {
	Title   string
	Weights []float64 // len(Weights) equals the EV count; Weights[i] belongs to EV i
}

// ContrastDecl is a contrast as the caller declares it: either a symbolic
// expression or a literal weight vector, never both.
type ContrastDecl struct {
	Title   string
	Expr    string
	Weights []float64
}

// ContrastRegistry is the append-only list of compiled contrasts. It can
// only be built over a frozen EVSet.
type ContrastRegistry struct {
	evs       *EVSet
	contrasts []Contrast
}

// NewContrastRegistry creates an empty registry whose contrasts are aligned
// to evs.
func NewContrastRegistry(evs *EVSet) *ContrastRegistry {
	return &ContrastRegistry{evs: evs}
}

// Add compiles decl and appends it.
func (r *ContrastRegistry) Add(decl ContrastDecl) error {
	if r.evs.Len() == 0 {
		return newError(ErrOrdering, decl.Title, "declare at least one EV before any contrast")
	}

	hasExpr := decl.Expr != ""
	hasWeights := decl.Weights != nil
	var (
		weights []float64
		err     error
	)
	switch {
	case hasExpr && hasWeights:
		return newError(ErrValidation, decl.Title, "contrast has both an expression and weights")
	case hasExpr:
		weights, err = CompileExpr(decl.Expr, r.evs)
	case hasWeights:
		weights, err = CheckWeights(decl.Weights, r.evs)
	default:
		return newError(ErrValidation, decl.Title, "contrast needs an expression or weights")
	}
	if err != nil {
		if de, ok := err.(*Error); ok && de.Field == "" {
			de.Field = decl.Title
		}
		return err
	}

	r.contrasts = append(r.contrasts, Contrast{Title: decl.Title, Weights: weights})
	return nil
}

// Len returns the number of contrasts.
func (r *ContrastRegistry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.contrasts)
}

// EVs returns the EV set the contrasts are aligned to.
func (r *ContrastRegistry) EVs() *EVSet { return r.evs }

// All returns copies of the contrasts in declaration order.
func (r *ContrastRegistry) All() []Contrast {
	if r == nil {
		return nil
	}
	out := make([]Contrast, len(r.contrasts))
	for i, c := range r.contrasts {
		out[i] = Contrast{Title: c.Title, Weights: append([]float64(nil), c.Weights...)}
	}
	return out
}
