// Package chart builds the series a presentation layer draws: a closed
// radar polygon for the current sheet and per-dimension trend lines over
// saved records.
package chart

import (
	"sort"
	"time"

	"github.com/okian/readiness/internal/domain/model"
	"github.com/okian/readiness/internal/domain/scoring"
)

// OverallSeries names the trend line of overall scores.
const OverallSeries = "Overall"

// Axis range of the radar.
const (
	AxisMin = 0.0
	AxisMax = scoring.MaxScore
)

// RadarSeries is a closed polygon: the first point is repeated at the end.
type RadarSeries struct {
	Labels []string   `json:"labels"`
	Values []float64  `json:"values"`
	Range  [2]float64 `json:"range"`
}

// Radar turns dimension results into a radar series in catalog order.
func Radar(dims []scoring.DimensionResult) RadarSeries {
	rs := RadarSeries{
		Labels: make([]string, 0, len(dims)+1),
		Values: make([]float64, 0, len(dims)+1),
		Range:  [2]float64{AxisMin, AxisMax},
	}
	for _, d := range dims {
		rs.Labels = append(rs.Labels, d.Name)
		rs.Values = append(rs.Values, d.Score)
	}
	if len(dims) > 0 {
		rs.Labels = append(rs.Labels, dims[0].Name)
		rs.Values = append(rs.Values, dims[0].Score)
	}
	return rs
}

// Line is one named trend line. Points align with TrendSeries.Timestamps.
type Line struct {
	Name   string                `json:"name"`
	Points []model.OptionalScore `json:"points"`
}

// TrendSeries holds one line per dimension plus the overall line.
type TrendSeries struct {
	Timestamps []time.Time `json:"timestamps"`
	Lines      []Line      `json:"lines"`
}

// Trend builds one line per name in dimNames and a final Overall line.
// Records are sorted by CreatedAt (stable) so callers may pass them in any
// order. A record without a score for a dimension yields an explicit gap.
// Dimensions found in records but absent from dimNames are appended in
// sorted order so retired dimensions still chart.
func Trend(dimNames []string, records []model.AssessmentRecord) TrendSeries {
	recs := make([]model.AssessmentRecord, len(records))
	copy(recs, records)
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].CreatedAt.Before(recs[j].CreatedAt) })

	names := append([]string(nil), dimNames...)
	known := make(map[string]struct{}, len(names))
	for _, n := range names {
		known[n] = struct{}{}
	}
	var extra []string
	for _, r := range recs {
		for n := range r.Scores {
			if _, ok := known[n]; !ok {
				known[n] = struct{}{}
				extra = append(extra, n)
			}
		}
	}
	sort.Strings(extra)
	names = append(names, extra...)

	ts := TrendSeries{
		Timestamps: make([]time.Time, len(recs)),
		Lines:      make([]Line, 0, len(names)+1),
	}
	for i, r := range recs {
		ts.Timestamps[i] = r.CreatedAt
	}
	for _, n := range names {
		line := Line{Name: n, Points: make([]model.OptionalScore, len(recs))}
		for i, r := range recs {
			line.Points[i] = r.Score(n)
		}
		ts.Lines = append(ts.Lines, line)
	}
	overall := Line{Name: OverallSeries, Points: make([]model.OptionalScore, len(recs))}
	for i, r := range recs {
		overall.Points[i] = model.Some(r.Overall)
	}
	ts.Lines = append(ts.Lines, overall)
	return ts
}

// Line returns the line called name.
func (t TrendSeries) Line(name string) (Line, bool) {
	for _, l := range t.Lines {
		if l.Name == name {
			return l, true
		}
	}
	return Line{}, false
}
