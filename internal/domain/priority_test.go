package domain

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"gorm.io/datatypes"
)

var t0 = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

// overdueBy returns a problem at stage whose last review lies `intervals`
// stage intervals past due at t0.
func overdueBy(stage int, difficulty Difficulty, tags []string, intervals float64) *Problem {
	var elapsed time.Duration
	if stage < MasteredStage {
		elapsed = time.Duration(float64(StageAt(stage).Interval) * (1 + intervals))
	}
	return &Problem{
		Slug:           "p",
		Difficulty:     difficulty,
		Tags:           datatypes.JSONSlice[string](tags),
		Stage:          stage,
		LastReviewTime: t0.Add(-elapsed).UnixMilli(),
	}
}

func TestCalculatePriorityMastered(t *testing.T) {
	p := &Problem{Stage: MasteredStage, Difficulty: DifficultyHard, LastReviewTime: t0.Add(-10000 * time.Hour).UnixMilli()}
	got := CalculatePriority(p, map[string]float64{"DP": 3}, t0)
	if !got.IsMastered() {
		t.Errorf("CalculatePriority(mastered) = %v, want -Inf", got)
	}
}

func TestCalculatePriorityMasteredIffTerminalStage(t *testing.T) {
	for stage := 0; stage <= MasteredStage; stage++ {
		p := overdueBy(stage, DifficultyMedium, nil, 3)
		if stage == MasteredStage {
			p.LastReviewTime = t0.Add(-time.Hour).UnixMilli()
		}
		got := CalculatePriority(p, nil, t0)
		if got.IsMastered() != (stage == MasteredStage) {
			t.Errorf("stage %d: IsMastered = %v", stage, got.IsMastered())
		}
	}
}

func TestCalculatePriorityNotDueIsZero(t *testing.T) {
	weights := map[string]float64{"DP": 5}
	for _, d := range []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard, "Unknown"} {
		for stage := 0; stage < MasteredStage; stage++ {
			p := &Problem{
				Difficulty:     d,
				Tags:           datatypes.JSONSlice[string]{"DP"},
				Stage:          stage,
				LastReviewTime: t0.Add(-StageAt(stage).Interval + time.Minute).UnixMilli(),
			}
			if got := CalculatePriority(p, weights, t0); got != 0 {
				t.Errorf("%s stage %d not yet due: priority = %v, want 0", d, stage, got)
			}
		}
	}
}

func TestCalculatePriorityExactlyDueIsZero(t *testing.T) {
	p := overdueBy(2, DifficultyHard, nil, 0)
	if got := CalculatePriority(p, nil, t0); got != 0 {
		t.Errorf("exactly due: priority = %v, want 0", got)
	}
}

func TestCalculatePriorityDifficultyScaling(t *testing.T) {
	tests := []struct {
		difficulty Difficulty
		want       float64
	}{
		{DifficultyEasy, 0.8},
		{DifficultyMedium, 1.0},
		{DifficultyHard, 1.5},
		{"", 1.0},
		{"Insane", 1.0},
	}

	for _, tt := range tests {
		got := float64(CalculatePriority(overdueBy(0, tt.difficulty, nil, 1), nil, t0))
		if math.Abs(got-tt.want) > 0.01 {
			t.Errorf("%q at 1x overdue: priority = %f, want ~%f", tt.difficulty, got, tt.want)
		}
	}
}

func TestCalculatePriorityTagWeightMax(t *testing.T) {
	weights := map[string]float64{"DP": 2.0, "Array": 1.0}
	p := overdueBy(1, DifficultyMedium, []string{"DP", "Array"}, 1)

	got := float64(CalculatePriority(p, weights, t0))
	if math.Abs(got-2.0) > 0.01 {
		t.Errorf("priority = %f, want ~2.0", got)
	}
}

func TestMaxTagWeight(t *testing.T) {
	weights := map[string]float64{"DP": 2.0, "Greedy": 0.5, "Graph": 1.3}

	tests := []struct {
		name string
		tags []string
		want float64
	}{
		{"no tags", nil, 1.0},
		{"unweighted tag", []string{"Math"}, 1.0},
		{"weight below baseline ignored", []string{"Greedy"}, 1.0},
		{"single weighted", []string{"Graph"}, 1.3},
		{"max wins", []string{"Graph", "DP", "Greedy"}, 2.0},
	}

	for _, tt := range tests {
		if got := MaxTagWeight(tt.tags, weights); got != tt.want {
			t.Errorf("%s: TagWeight = %f, want %f", tt.name, got, tt.want)
		}
	}
}

func TestOverdueRatioScalesWithElapsed(t *testing.T) {
	p := overdueBy(0, DifficultyMedium, nil, 2.5)
	if got := OverdueRatio(p, t0); math.Abs(got-2.5) > 1e-9 {
		t.Errorf("OverdueRatio = %f, want 2.5", got)
	}
}

func TestBuildReviewQueue(t *testing.T) {
	problems := []Problem{
		*overdueBy(0, DifficultyEasy, nil, 1), // 0.8
		*overdueBy(MasteredStage, DifficultyHard, nil, 0),
		*overdueBy(1, DifficultyHard, nil, 2),      // 3.0
		*overdueBy(0, DifficultyMedium, nil, -0.5), // not due
		*overdueBy(2, DifficultyMedium, nil, -0.5), // not due
	}
	for i := range problems {
		problems[i].Slug = string(rune('a' + i))
	}

	queue := BuildReviewQueue(problems, nil, t0)

	want := []string{"c", "a", "d", "e"}
	if len(queue) != len(want) {
		t.Fatalf("queue length = %d, want %d", len(queue), len(want))
	}
	for i, slug := range want {
		if queue[i].Slug != slug {
			t.Errorf("queue[%d] = %s, want %s", i, queue[i].Slug, slug)
		}
	}
	if queue[2].PriorityScore != 0 || queue[3].PriorityScore != 0 {
		t.Errorf("not-due problems should score 0, got %v and %v", queue[2].PriorityScore, queue[3].PriorityScore)
	}
}

func TestScoreJSON(t *testing.T) {
	tests := []struct {
		score Score
		json  string
	}{
		{MasteredScore, `"-Infinity"`},
		{0, `0`},
		{1.5, `1.5`},
	}

	for _, tt := range tests {
		b, err := json.Marshal(tt.score)
		if err != nil {
			t.Fatalf("Marshal(%v): %v", tt.score, err)
		}
		if string(b) != tt.json {
			t.Errorf("Marshal(%v) = %s, want %s", tt.score, b, tt.json)
		}

		var back Score
		if err := json.Unmarshal(b, &back); err != nil {
			t.Fatalf("Unmarshal(%s): %v", b, err)
		}
		if back != tt.score {
			t.Errorf("Unmarshal(%s) = %v, want %v", b, back, tt.score)
		}
	}

	var s Score = 7
	if err := json.Unmarshal([]byte("null"), &s); err != nil || s != 0 {
		t.Errorf("Unmarshal(null) = %v, %v; want 0, nil", s, err)
	}
}

func TestNextReviewAt(t *testing.T) {
	p := &Problem{Stage: 1, LastReviewTime: t0.UnixMilli()}
	next, ok := NextReviewAt(p)
	if !ok || !next.Equal(t0.Add(48*time.Hour)) {
		t.Errorf("NextReviewAt = %v, %v; want %v, true", next, ok, t0.Add(48*time.Hour))
	}

	p.Stage = MasteredStage
	if _, ok := NextReviewAt(p); ok {
		t.Error("mastered problem should never be due")
	}
}
