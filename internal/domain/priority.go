package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"
)

// DefaultTagWeight is the multiplier for problems with no weighted tag
const DefaultTagWeight = 1.0

// Score is a review priority. Mastered problems score negative infinity,
// which JSON cannot carry as a number, so it travels as the string "-Infinity".
type Score float64

// MasteredScore is the score of every mastered problem
var MasteredScore = Score(math.Inf(-1))

// IsMastered reports whether the score marks a mastered problem
func (s Score) IsMastered() bool {
	return math.IsInf(float64(s), -1)
}

func (s Score) MarshalJSON() ([]byte, error) {
	f := float64(s)
	switch {
	case math.IsInf(f, -1):
		return []byte(`"-Infinity"`), nil
	case math.IsInf(f, 1):
		return []byte(`"Infinity"`), nil
	case math.IsNaN(f):
		return []byte(`null`), nil
	}
	return json.Marshal(f)
}

func (s *Score) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "null":
		*s = 0
		return nil
	case `"-Infinity"`:
		*s = MasteredScore
		return nil
	case `"Infinity"`:
		*s = Score(math.Inf(1))
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("priority score: %w", err)
	}
	*s = Score(f)
	return nil
}

// MaxTagWeight is the largest configured weight among tags, never below DefaultTagWeight.
// Tags without a configured weight contribute nothing.
func MaxTagWeight(tags []string, weights map[string]float64) float64 {
	w := DefaultTagWeight
	for _, tag := range tags {
		if tw, ok := weights[tag]; ok && tw > w {
			w = tw
		}
	}
	return w
}

// OverdueRatio is how many intervals past due the problem is at now.
// A problem that is not yet due has ratio exactly 0.
func OverdueRatio(p *Problem, now time.Time) float64 {
	interval := float64(StageAt(p.Stage).Interval.Milliseconds())
	elapsed := float64(now.UnixMilli() - p.LastReviewTime)
	return math.Max(0, (elapsed-interval)/interval)
}

// CalculatePriority scores a problem for the review queue:
// overdueRatio × difficultyWeight × tagWeight, or MasteredScore once mastered.
func CalculatePriority(p *Problem, tagWeights map[string]float64, now time.Time) Score {
	if p.IsMastered() {
		return MasteredScore
	}
	return Score(OverdueRatio(p, now) * p.Difficulty.Weight() * MaxTagWeight(p.Tags, tagWeights))
}

// NextReviewAt is when the problem becomes due. Mastered problems are never due.
func NextReviewAt(p *Problem) (time.Time, bool) {
	if p.IsMastered() {
		return time.Time{}, false
	}
	return time.UnixMilli(p.LastReviewTime).Add(StageAt(p.Stage).Interval), true
}

// RefreshPriorities recomputes the cached score of every problem in place
func RefreshPriorities(problems []Problem, tagWeights map[string]float64, now time.Time) {
	for i := range problems {
		problems[i].PriorityScore = CalculatePriority(&problems[i], tagWeights, now)
	}
}

// BuildReviewQueue drops mastered problems and orders the rest by descending
// priority. Equal scores keep their input order.
func BuildReviewQueue(problems []Problem, tagWeights map[string]float64, now time.Time) []Problem {
	queue := make([]Problem, 0, len(problems))
	for _, p := range problems {
		if p.IsMastered() {
			continue
		}
		p.PriorityScore = CalculatePriority(&p, tagWeights, now)
		queue = append(queue, p)
	}
	sort.SliceStable(queue, func(i, j int) bool {
		return queue[i].PriorityScore > queue[j].PriorityScore
	})
	return queue
}
