package colour

// Stage identifies a step of the relaxation ladder.
type Stage int

const (
	// StageStrict samples with the caller's filters.
	StageStrict Stage = iota + 1

	// StageKeepWhite disables the white filter.
	StageKeepWhite

	// StageAcceptAll additionally accepts every alpha value.
	StageAcceptAll
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageStrict:
		return "strict"
	case StageKeepWhite:
		return "keep-white"
	case StageAcceptAll:
		return "accept-all"
	default:
		return "unknown"
	}
}

type relaxation struct {
	stage Stage
	apply func(FilterSet) FilterSet
}

// relaxationLadder is tried in order until a stage yields samples.
var relaxationLadder = []relaxation{
	{
		stage: StageStrict,
		apply: func(f FilterSet) FilterSet { return f },
	},
	{
		stage: StageKeepWhite,
		apply: func(f FilterSet) FilterSet {
			f.IgnoreWhite = false
			return f
		},
	},
	{
		stage: StageAcceptAll,
		apply: func(f FilterSet) FilterSet {
			f.IgnoreWhite = false
			f.AlphaThreshold = 0
			return f
		},
	},
}

// SampleWithRelaxation samples buf, weakening the filters whenever a pass
// comes back empty. It returns the first non-empty sample set together with
// the stage that produced it. Each stage replaces the previous result.
//
// The saturation filter is never relaxed, so the returned set is empty when
// the buffer has no pixels or when no pixel meets the minimum saturation.
func SampleWithRelaxation(buf PixelBuffer, quality int, f FilterSet) ([]RGB, Stage) {
	var samples []RGB
	stage := StageStrict
	for _, step := range relaxationLadder {
		stage = step.stage
		samples = Sample(buf, quality, step.apply(f))
		if len(samples) > 0 {
			break
		}
	}
	return samples, stage
}
