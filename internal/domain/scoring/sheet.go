package scoring

import (
	"fmt"

	"github.com/okian/readiness/internal/domain/catalog"
)

// DimensionResult is the score and band of one dimension plus the answers
// that produced it (unset answers already filled with DefaultResponse).
type DimensionResult struct {
	Name    string  `json:"name"`
	Score   float64 `json:"score"`
	Label   Label   `json:"label"`
	Answers []int   `json:"answers"`
}

// Sheet is a fully scored questionnaire.
type Sheet struct {
	Dimensions   []DimensionResult `json:"dimensions"`
	Overall      float64           `json:"overall"`
	OverallLabel Label             `json:"overall_label"`
}

// Scores returns dimension name -> score.
func (s Sheet) Scores() map[string]float64 {
	out := make(map[string]float64, len(s.Dimensions))
	for _, d := range s.Dimensions {
		out[d.Name] = d.Score
	}
	return out
}

// Fill pads answers to n entries with DefaultResponse. Supplying more than n
// answers is an error.
func Fill(n int, answers []int) ([]int, error) {
	if len(answers) > n {
		return nil, fmt.Errorf("%w: %d answers for %d questions", ErrInvalidInput, len(answers), n)
	}
	out := make([]int, n)
	copy(out, answers)
	for i := len(answers); i < n; i++ {
		out[i] = DefaultResponse
	}
	return out, nil
}

// Evaluate scores responses against cat. responses maps a dimension name to
// the answers of its questions in order; missing dimensions and trailing
// questions default to DefaultResponse. Unknown dimensions are rejected.
// The sheet is rebuilt from scratch on every call.
func Evaluate(cat catalog.Catalog, responses map[string][]int) (Sheet, error) {
	if cat.Len() == 0 {
		return Sheet{}, fmt.Errorf("%w: empty catalog", ErrInvalidInput)
	}
	for name := range responses {
		if _, ok := cat.Lookup(name); !ok {
			return Sheet{}, fmt.Errorf("%w: unknown dimension %q", ErrInvalidInput, name)
		}
	}

	dims := cat.Dimensions()
	sheet := Sheet{Dimensions: make([]DimensionResult, 0, len(dims))}
	for _, d := range dims {
		answers, err := Fill(len(d.Questions), responses[d.Name])
		if err != nil {
			return Sheet{}, fmt.Errorf("dimension %q: %w", d.Name, err)
		}
		score, err := ComputeDimensionScore(answers)
		if err != nil {
			return Sheet{}, fmt.Errorf("dimension %q: %w", d.Name, err)
		}
		label, err := Interpret(score)
		if err != nil {
			return Sheet{}, fmt.Errorf("dimension %q: %w", d.Name, err)
		}
		sheet.Dimensions = append(sheet.Dimensions, DimensionResult{Name: d.Name, Score: score, Label: label, Answers: answers})
	}

	overall, err := ComputeOverallScore(sheet.Scores())
	if err != nil {
		return Sheet{}, err
	}
	overallLabel, err := Interpret(overall)
	if err != nil {
		return Sheet{}, err
	}
	sheet.Overall = overall
	sheet.OverallLabel = overallLabel
	return sheet, nil
}
