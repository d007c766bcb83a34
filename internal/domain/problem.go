package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Difficulty represents the difficulty level of a problem
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Weight returns the priority multiplier for the difficulty.
// Hard problems rank higher when equally overdue.
func (d Difficulty) Weight() float64 {
	switch d {
	case DifficultyEasy:
		return 0.8
	case DifficultyMedium:
		return 1.0
	case DifficultyHard:
		return 1.5
	default:
		return 1.0
	}
}

// IsValid reports whether d is one of the known difficulty levels
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// ParseDifficulty matches raw against the known levels, ignoring case and
// surrounding space
func ParseDifficulty(raw string) (Difficulty, bool) {
	raw = strings.TrimSpace(raw)
	for _, d := range []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard} {
		if strings.EqualFold(raw, string(d)) {
			return d, true
		}
	}
	return "", false
}

// Origin identifies which LeetCode site a problem was solved on
type Origin string

const (
	OriginCom Origin = "com"
	OriginCN  Origin = "cn"
)

// ParseOrigin matches raw against the known origins, ignoring case
func ParseOrigin(raw string) (Origin, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(OriginCom):
		return OriginCom, true
	case string(OriginCN):
		return OriginCN, true
	}
	return "", false
}

// BaseURL returns the site root for the origin. Unknown origins fall back to leetcode.com.
func (o Origin) BaseURL() string {
	if o == OriginCN {
		return "https://leetcode.cn"
	}
	return "https://leetcode.com"
}

// ProblemURL builds the canonical problem page for slug on this origin
func (o Origin) ProblemURL(slug string) string {
	return o.BaseURL() + "/problems/" + slug + "/"
}

// OriginFromURL infers the origin from a problem URL
func OriginFromURL(url string) Origin {
	if strings.Contains(url, "leetcode.cn") {
		return OriginCN
	}
	return OriginCom
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a slug from a free-form title. Titles without any
// ASCII letter or digit get a time-based slug.
func Slugify(title string, now time.Time) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(title), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return fmt.Sprintf("problem-%d", now.UnixMilli())
	}
	return slug
}

// CodeEntry is one captured accepted solution
type CodeEntry struct {
	Code string `json:"code"`
	Lang string `json:"lang"`
	Time int64  `json:"time"`
}

// Problem is a tracked problem and its review schedule.
// All timestamps are epoch milliseconds.
type Problem struct {
	Slug              string                         `json:"slug" gorm:"primaryKey;type:varchar(255)"`
	QuestionID        string                         `json:"questionId" gorm:"type:varchar(32)"`
	Title             string                         `json:"title" gorm:"not null"`
	Difficulty        Difficulty                     `json:"difficulty" gorm:"type:varchar(10);not null"`
	Tags              datatypes.JSONSlice[string]    `json:"tags"`
	URL               string                         `json:"url"`
	Origin            Origin                         `json:"origin" gorm:"type:varchar(8);not null"`
	Stage             int                            `json:"stage" gorm:"not null;index"`
	FirstAcceptedTime int64                          `json:"first_accepted_time" gorm:"not null"`
	LastReviewTime    int64                          `json:"last_review_time" gorm:"not null;index"`
	ReviewHistory     datatypes.JSONSlice[int64]     `json:"review_history"`
	Note              string                         `json:"note" gorm:"type:text"`
	Code              string                         `json:"code" gorm:"type:text"`
	CodeHistory       datatypes.JSONSlice[CodeEntry] `json:"codeHistory"`

	// Derived from the fields above, the clock and the tag weights. Never stored.
	PriorityScore Score `json:"priority_score" gorm:"-"`
}

// TableName specifies the table name for GORM
func (Problem) TableName() string {
	return "problems"
}

// IsMastered reports whether the problem reached the terminal stage
func (p *Problem) IsMastered() bool {
	return p.Stage >= MasteredStage
}

// LastTouched is the most recent of the first acceptance and the last review
func (p *Problem) LastTouched() int64 {
	if p.FirstAcceptedTime > p.LastReviewTime {
		return p.FirstAcceptedTime
	}
	return p.LastReviewTime
}

// Clone returns a deep copy so stored records never share slices with callers
func (p *Problem) Clone() Problem {
	c := *p
	c.Tags = append(datatypes.JSONSlice[string]{}, p.Tags...)
	c.ReviewHistory = append(datatypes.JSONSlice[int64]{}, p.ReviewHistory...)
	c.CodeHistory = append(datatypes.JSONSlice[CodeEntry]{}, p.CodeHistory...)
	return c
}

// normalize fills zero-valued collections and defaults so that a record
// decoded from an older snapshot satisfies the record invariants
func (p *Problem) normalize() {
	if p.Tags == nil {
		p.Tags = datatypes.JSONSlice[string]{}
	}
	if p.CodeHistory == nil {
		p.CodeHistory = datatypes.JSONSlice[CodeEntry]{}
	}
	if len(p.ReviewHistory) == 0 {
		p.ReviewHistory = datatypes.JSONSlice[int64]{p.FirstAcceptedTime}
	}
	if p.Difficulty == "" {
		p.Difficulty = DifficultyMedium
	}
	if p.Origin == "" {
		p.Origin = OriginCom
	}
	if p.Title == "" {
		p.Title = p.Slug
	}
	if p.URL == "" {
		p.URL = p.Origin.ProblemURL(p.Slug)
	}
}

// ProblemStats summarizes the tracked problem set for the dashboard
type ProblemStats struct {
	Total         int                `json:"total"`
	Due           int                `json:"due"`
	Mastered      int                `json:"mastered"`
	CurrentStreak int                `json:"current_streak"`
	LongestStreak int                `json:"longest_streak"`
	ByDifficulty  map[Difficulty]int `json:"by_difficulty"`
	ByStage       map[int]int        `json:"by_stage"`
}
