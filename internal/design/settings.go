package design

// DefaultHighPass is the high-pass cutoff in seconds used when none is given.
const DefaultHighPass = 100.0

// DataSettings holds the Data tab of the design.
type DataSettings struct {
	InputFile           string
	OutputDir           string
	TR                  float64 // repetition time, seconds
	HighPass            float64 // cutoff in seconds; 0 means DefaultHighPass
	ApplyHighPassFilter bool
	Volumes             int // total volumes in InputFile; 0 leaves it to the template
}

// Validate checks the fields that every design needs.
func (d DataSettings) Validate() error {
	if d.InputFile == "" {
		return newError(ErrValidation, "input_file", "input functional data is required")
	}
	if d.OutputDir == "" {
		return newError(ErrValidation, "output_dir", "output directory is required")
	}
	if d.TR <= 0 {
		return newError(ErrValidation, "tr", "TR must be positive, got %g", d.TR)
	}
	if d.HighPass < 0 {
		return newError(ErrValidation, "high_pass", "high-pass cutoff must not be negative, got %g", d.HighPass)
	}
	if d.Volumes < 0 {
		return newError(ErrValidation, "npts", "volume count must not be negative, got %d", d.Volumes)
	}
	return nil
}

func (d DataSettings) values() map[string]any {
	highPass := d.HighPass
	if highPass == 0 {
		highPass = DefaultHighPass
	}
	return map[string]any{
		"input_file":   d.InputFile,
		"output_dir":   d.OutputDir,
		"tr":           d.TR,
		"high_pass":    highPass,
		"high_pass_yn": boolInt(d.ApplyHighPassFilter),
		"npts":         d.Volumes,
	}
}

// StatsSettings holds the Stats tab of the design.
type StatsSettings struct {
	Prewhiten    bool
	ConfoundFile string // optional text file of confound EVs, one per column
}

func (s StatsSettings) values() map[string]any {
	return map[string]any{
		"prewhiten_yn":  boolInt(s.Prewhiten),
		"confound_yn":   boolInt(s.ConfoundFile != ""),
		"confound_file": s.ConfoundFile,
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
