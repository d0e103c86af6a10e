package design

import "strings"

// EV is an explanatory variable: a named, timed predictor in the design.
type EV struct {
	Title       string    // unique within a design; contrast expressions refer to it
	SourcePath  string    // timing file, passed through to the design untouched
	Model       ModelKind // convolution waveform or basis
	ApplyFilter bool      // apply the temporal filter to this EV
	Derivative  bool      // add a temporal derivative (not supported)
}

// EVRegistry is the append-only list of declared EVs. Declaration order
// fixes each EV's column in every contrast vector.
//
// Once Freeze has been called the registry rejects further additions; the
// returned EVSet is the only view contrasts are compiled against.
type EVRegistry struct {
	evs     []EV
	byTitle map[string]int
	frozen  *EVSet
}

// NewEVRegistry creates an empty registry.
func NewEVRegistry() *EVRegistry {
	return &EVRegistry{byTitle: make(map[string]int)}
}

// Add appends ev. Its index is the registry length before the call.
func (r *EVRegistry) Add(ev EV) error {
	if r.frozen != nil {
		return newError(ErrOrdering, ev.Title, "all EVs must be declared before the first contrast")
	}
	if strings.TrimSpace(ev.Title) == "" {
		return newError(ErrValidation, "title", "EV title must not be empty")
	}
	if !isIdent(ev.Title) {
		return newError(ErrValidation, ev.Title,
			"EV title must be a letter or underscore followed by letters, digits or underscores")
	}
	if _, dup := r.byTitle[ev.Title]; dup {
		return newError(ErrValidation, ev.Title, "EV already declared")
	}
	if !ev.Model.Valid() {
		return invalidModelKind(int(ev.Model))
	}
	if ev.Derivative {
		return newError(ErrUnsupportedFeature, ev.Title, "temporal derivatives are not supported")
	}

	r.byTitle[ev.Title] = len(r.evs)
	r.evs = append(r.evs, ev)
	return nil
}

// Len returns the number of declared EVs.
func (r *EVRegistry) Len() int { return len(r.evs) }

// Frozen reports whether Freeze has been called.
func (r *EVRegistry) Frozen() bool { return r.frozen != nil }

// Freeze closes the registry and returns its immutable view. Calling it
// again returns the same view.
func (r *EVRegistry) Freeze() *EVSet {
	if r.frozen == nil {
		r.frozen = &EVSet{evs: r.evs, byTitle: r.byTitle}
	}
	return r.frozen
}

// view returns a read-only snapshot without closing the registry.
func (r *EVRegistry) view() *EVSet {
	return &EVSet{evs: r.evs[:len(r.evs):len(r.evs)], byTitle: r.byTitle}
}

// EVSet is a closed, read-only EV registry.
type EVSet struct {
	evs     []EV
	byTitle map[string]int
}

// Len returns the number of EVs.
func (s *EVSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.evs)
}

// At returns the EV at index i.
func (s *EVSet) At(i int) EV { return s.evs[i] }

// Index returns the position of the EV titled title.
func (s *EVSet) Index(title string) (int, bool) {
	if s == nil {
		return 0, false
	}
	i, ok := s.byTitle[title]
	return i, ok
}

// Titles returns EV titles in declaration order.
func (s *EVSet) Titles() []string {
	titles := make([]string, s.Len())
	for i := range titles {
		titles[i] = s.evs[i].Title
	}
	return titles
}

// All returns a copy of the EVs in declaration order.
func (s *EVSet) All() []EV {
	if s == nil {
		return nil
	}
	out := make([]EV, len(s.evs))
	copy(out, s.evs)
	return out
}
