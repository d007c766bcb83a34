package domain

import (
	"math"
	"time"
)

// Stage is one step of the review schedule. A problem at this stage becomes
// due again once Interval has elapsed since its last review.
type Stage struct {
	Label    string
	Interval time.Duration
}

// Stages is the forgetting-curve schedule. The last entry is terminal.
var Stages = [...]Stage{
	{Label: "Review 1", Interval: 24 * time.Hour},
	{Label: "Review 2", Interval: 48 * time.Hour},
	{Label: "Review 3", Interval: 96 * time.Hour},
	{Label: "Review 4", Interval: 168 * time.Hour},
	{Label: "Review 5", Interval: 360 * time.Hour},
	{Label: "Review 6", Interval: 720 * time.Hour},
	{Label: "Mastered", Interval: time.Duration(math.MaxInt64)},
}

// MasteredStage is the index of the terminal stage
const MasteredStage = len(Stages) - 1

// StageAt returns the stage for idx, clamped into the table
func StageAt(idx int) Stage {
	return Stages[ClampStage(idx)]
}

// ClampStage forces idx into [0, MasteredStage]
func ClampStage(idx int) int {
	if idx < 0 {
		return 0
	}
	if idx > MasteredStage {
		return MasteredStage
	}
	return idx
}

// NextStage is the stage reached after one accepted review
func NextStage(idx int) int {
	return ClampStage(idx + 1)
}

// StageInfo describes a stage in API responses
type StageInfo struct {
	Index         int     `json:"index"`
	Label         string  `json:"label"`
	IntervalHours float64 `json:"interval_hours,omitempty"`
	Mastered      bool    `json:"mastered"`
}

// StagesInfo returns the stage table in response form
func StagesInfo() []StageInfo {
	infos := make([]StageInfo, len(Stages))
	for i, s := range Stages {
		infos[i] = StageInfo{Index: i, Label: s.Label, Mastered: i == MasteredStage}
		if i != MasteredStage {
			infos[i].IntervalHours = s.Interval.Hours()
		}
	}
	return infos
}
