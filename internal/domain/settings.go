package domain

import (
	"sort"
	"time"
)

// Settings holds the user-tunable scheduling knobs
type Settings struct {
	TagWeights map[string]float64 `json:"tagWeights"`
}

// DefaultSettings returns the settings used before the user saves any
func DefaultSettings() *Settings {
	return &Settings{TagWeights: map[string]float64{}}
}

// Validate rejects non-positive or non-finite weights and empty tag names
func (s *Settings) Validate() error {
	for tag, w := range s.TagWeights {
		if tag == "" {
			return InvalidInput("tag name is required")
		}
		if !(w > 0) || w > 1e6 {
			return InvalidInput("weight for tag %q must be a positive number", tag)
		}
	}
	return nil
}

// Clone returns a copy that shares no map with s
func (s *Settings) Clone() *Settings {
	c := &Settings{TagWeights: make(map[string]float64, len(s.TagWeights))}
	for k, v := range s.TagWeights {
		c.TagWeights[k] = v
	}
	return c
}

// TagWeight is the persisted form of one settings entry
type TagWeight struct {
	Tag    string  `gorm:"primaryKey;type:varchar(100)"`
	Weight float64 `gorm:"not null"`
}

// TableName specifies the table name for GORM
func (TagWeight) TableName() string {
	return "tag_weights"
}

// ActivityLog counts ingestion events per local calendar day ("2006-01-02")
type ActivityLog map[string]int

// DayLayout is the key format of ActivityLog
const DayLayout = "2006-01-02"

// DayKey returns the activity log key of t in loc
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayLayout)
}

// Clone returns an independent copy of the log
func (l ActivityLog) Clone() ActivityLog {
	c := make(ActivityLog, len(l))
	for k, v := range l {
		c[k] = v
	}
	return c
}

// CurrentStreak counts consecutive active days ending on the day of now
func (l ActivityLog) CurrentStreak(now time.Time, loc *time.Location) int {
	streak := 0
	day := now.In(loc)
	for l[day.Format(DayLayout)] > 0 {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// LongestStreak is the longest run of consecutive active days in the log
func (l ActivityLog) LongestStreak() int {
	days := make([]time.Time, 0, len(l))
	for key, count := range l {
		if count <= 0 {
			continue
		}
		d, err := time.Parse(DayLayout, key)
		if err != nil {
			continue
		}
		days = append(days, d)
	}
	if len(days) == 0 {
		return 0
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	longest, cur := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			cur++
			if cur > longest {
				longest = cur
			}
		} else {
			cur = 1
		}
	}
	return longest
}

// ActivityDay is the persisted form of one activity log entry
type ActivityDay struct {
	Day    string `gorm:"primaryKey;type:varchar(10)"`
	Events int    `gorm:"not null"`
}

// TableName specifies the table name for GORM
func (ActivityDay) TableName() string {
	return "activity_log"
}
