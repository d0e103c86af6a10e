// Package design builds the analysis specification for a first-level FEAT
// model: an ordered registry of explanatory variables, contrasts compiled
// against it, and the flat namespace a design template is rendered from.
//
// A Design is driven by a single caller in two phases. EVs are declared
// first; the first contrast freezes the EV registry, after which only
// contrasts may be added.
package design

// Design is one design-building session.
type Design struct {
	data  DataSettings
	stats StatsSettings

	pending   *EVRegistry // nil once the EVs have been frozen
	evs       *EVSet
	contrasts *ContrastRegistry
}

// New creates an empty design.
func New() *Design {
	return &Design{pending: NewEVRegistry()}
}

// SetData replaces the Data tab settings.
func (d *Design) SetData(data DataSettings) { d.data = data }

// SetStats replaces the Stats tab settings.
func (d *Design) SetStats(stats StatsSettings) { d.stats = stats }

// Data returns the current Data tab settings.
func (d *Design) Data() DataSettings { return d.data }

// Stats returns the current Stats tab settings.
func (d *Design) Stats() StatsSettings { return d.stats }

// AddEV declares the next EV.
func (d *Design) AddEV(ev EV) error {
	if d.pending == nil {
		return newError(ErrOrdering, ev.Title, "all EVs must be declared before the first contrast")
	}
	return d.pending.Add(ev)
}

// AddContrast compiles and appends a contrast. The first call closes the
// EV registry.
func (d *Design) AddContrast(decl ContrastDecl) error {
	if d.contrasts == nil {
		if d.pending.Len() == 0 {
			return newError(ErrOrdering, decl.Title, "declare at least one EV before any contrast")
		}
		d.evs = d.pending.Freeze()
		d.pending = nil
		d.contrasts = NewContrastRegistry(d.evs)
	}
	return d.contrasts.Add(decl)
}

// EVs returns the declared EVs in order.
func (d *Design) EVs() []EV {
	return d.currentEVs().All()
}

// Contrasts returns the compiled contrasts in order.
func (d *Design) Contrasts() []Contrast {
	return d.contrasts.All()
}

// Namespace assembles the template namespace from the current state.
func (d *Design) Namespace() Namespace {
	return BuildNamespace(d.data, d.stats, d.currentEVs(), d.contrasts)
}

func (d *Design) currentEVs() *EVSet {
	if d.evs != nil {
		return d.evs
	}
	return d.pending.view()
}
