package scoring

import "fmt"

// Label is the qualitative band a score falls into.
type Label string

// Bands in ascending order.
const (
	Critical   Label = "Critical"
	Weak       Label = "Weak"
	Moderate   Label = "Moderate"
	Good       Label = "Good"
	VeryStrong Label = "Very strong"
)

// band upper bounds are inclusive; anything above the last bound is VeryStrong.
var bands = []struct {
	upper float64
	label Label
}{
	{1.5, Critical},
	{2.5, Weak},
	{3.5, Moderate},
	{4.5, Good},
}

// Labels returns every band from worst to best.
func Labels() []Label {
	return []Label{Critical, Weak, Moderate, Good, VeryStrong}
}

// Interpret maps a score in [1,5] onto its band. Scores outside the range
// (or NaN) are rejected rather than clamped.
func Interpret(score float64) (Label, error) {
	if !inRange(score) {
		return "", fmt.Errorf("%w: score %v outside %v..%v", ErrInvalidInput, score, MinScore, MaxScore)
	}
	for _, b := range bands {
		if score <= b.upper {
			return b.label, nil
		}
	}
	return VeryStrong, nil
}
