package design

// Namespace keys derived from the registries.
const (
	KeyEVCount       = "ev_count"
	KeyContrastCount = "contrast_count"
	KeyEVs           = "evs"
	KeyContrasts     = "contrasts"
)

// Namespace is the flat variable mapping a design template is rendered
// against. Values are strings, numbers, and lists of Records only.
type Namespace map[string]any

// Record is one element of an ordered list in a Namespace.
type Record map[string]any

// BuildNamespace merges data settings, stats settings and the two registries
// into a fresh Namespace. Later sources override earlier ones on collision.
func BuildNamespace(data DataSettings, stats StatsSettings, evs *EVSet, contrasts *ContrastRegistry) Namespace {
	ns := make(Namespace)
	for k, v := range data.values() {
		ns[k] = v
	}
	for k, v := range stats.values() {
		ns[k] = v
	}

	evRecords := make([]Record, 0, evs.Len())
	for _, ev := range evs.All() {
		evRecords = append(evRecords, Record{
			"title":      ev.Title,
			"fpath":      ev.SourcePath,
			"model":      ev.Model.Code(),
			"filter":     boolInt(ev.ApplyFilter),
			"derivative": boolInt(ev.Derivative),
		})
	}

	conRecords := make([]Record, 0, contrasts.Len())
	for _, c := range contrasts.All() {
		conRecords = append(conRecords, Record{
			"title": c.Title,
			"elems": c.Weights,
		})
	}

	ns[KeyEVCount] = len(evRecords)
	ns[KeyContrastCount] = len(conRecords)
	ns[KeyEVs] = evRecords
	ns[KeyContrasts] = conRecords
	return ns
}
