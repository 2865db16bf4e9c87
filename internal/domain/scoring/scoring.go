// Package scoring turns Likert responses into dimension and overall scores.
//
// Every function here is pure: no shared state, safe for concurrent use.
//
// Rounding: results are rounded to two decimals with round-half-to-even
// applied to the exact binary value of the float64. A tie only happens when
// the value is exactly representable, so (4.00+1.25)/2 = 2.625 rounds to
// 2.62, while 2.675 (stored as 2.67499...) rounds to 2.67.
package scoring

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Response bounds on the Likert scale.
const (
	MinResponse     = 1
	MaxResponse     = 5
	DefaultResponse = 3

	MinScore = float64(MinResponse)
	MaxScore = float64(MaxResponse)
)

// Round2 rounds x to two decimals, ties to even.
func Round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	// strconv rounds the exact decimal expansion, ties to even.
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 2, 64), 64)
	if err != nil {
		return x
	}
	return r
}

// ComputeDimensionScore returns the mean of responses rounded to two decimals.
// Every response must lie in [1,5] and the slice must not be empty.
func ComputeDimensionScore(responses []int) (float64, error) {
	if len(responses) == 0 {
		return 0, fmt.Errorf("%w: no responses", ErrInvalidInput)
	}
	sum := 0
	for i, r := range responses {
		if r < MinResponse || r > MaxResponse {
			return 0, fmt.Errorf("%w: response %d is %d, want %d..%d", ErrInvalidInput, i, r, MinResponse, MaxResponse)
		}
		sum += r
	}
	return Round2(float64(sum) / float64(len(responses))), nil
}

// ComputeOverallScore returns the mean of dimension scores rounded to two
// decimals. Dimensions weigh equally whatever their question count.
func ComputeOverallScore(scores map[string]float64) (float64, error) {
	if len(scores) == 0 {
		return 0, fmt.Errorf("%w: no dimension scores", ErrInvalidInput)
	}
	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	// fixed summation order keeps the result stable across map iterations
	sort.Strings(names)

	sum := 0.0
	for _, name := range names {
		s := scores[name]
		if !inRange(s) {
			return 0, fmt.Errorf("%w: score for %q is %v, want %v..%v", ErrInvalidInput, name, s, MinScore, MaxScore)
		}
		sum += s
	}
	return Round2(sum / float64(len(names))), nil
}

func inRange(s float64) bool {
	return !math.IsNaN(s) && s >= MinScore && s <= MaxScore
}
