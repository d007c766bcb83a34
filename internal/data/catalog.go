package data

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/leetcurve/backend/internal/domain"
)

//go:embed catalog.json
var catalogData []byte

// problemJSON represents the JSON structure for catalog entries
type problemJSON struct {
	QuestionID  string   `json:"question_id"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Difficulty  string   `json:"difficulty"`
	Topics      []string `json:"topics"`
	LeetCodeURL string   `json:"leetcode_url"`
	OrderIndex  int      `json:"order_index"`
}

// Entry is the known metadata of one problem
type Entry struct {
	QuestionID string
	Title      string
	Slug       string
	Difficulty domain.Difficulty
	Topics     []string
	URL        string
	OrderIndex int
}

// Catalog is a read-only index of well known problems, used to fill in
// metadata when a submission arrives with only a slug
type Catalog struct {
	entries []Entry
	bySlug  map[string]int
}

// LoadCatalog parses the embedded problem list
func LoadCatalog() (*Catalog, error) {
	var raw []problemJSON
	if err := json.Unmarshal(catalogData, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse problem catalog: %w", err)
	}

	c := &Catalog{
		entries: make([]Entry, 0, len(raw)),
		bySlug:  make(map[string]int, len(raw)),
	}
	for _, p := range raw {
		d := domain.Difficulty(p.Difficulty)
		if !d.IsValid() {
			return nil, fmt.Errorf("catalog entry %s has unknown difficulty %q", p.Slug, p.Difficulty)
		}
		if _, dup := c.bySlug[p.Slug]; dup {
			return nil, fmt.Errorf("catalog entry %s appears twice", p.Slug)
		}
		c.bySlug[p.Slug] = len(c.entries)
		c.entries = append(c.entries, Entry{
			QuestionID: p.QuestionID,
			Title:      p.Title,
			Slug:       p.Slug,
			Difficulty: d,
			Topics:     p.Topics,
			URL:        p.LeetCodeURL,
			OrderIndex: p.OrderIndex,
		})
	}
	sort.SliceStable(c.entries, func(i, j int) bool {
		return c.entries[i].OrderIndex < c.entries[j].OrderIndex
	})
	for i, e := range c.entries {
		c.bySlug[e.Slug] = i
	}
	return c, nil
}

// Len returns the number of entries
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Lookup finds an entry by slug
func (c *Catalog) Lookup(slug string) (Entry, bool) {
	i, ok := c.bySlug[strings.ToLower(strings.TrimSpace(slug))]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Search returns entries whose slug or title contains query, in catalog order.
// An empty query returns everything.
func (c *Catalog) Search(query string) []Entry {
	q := strings.ToLower(strings.TrimSpace(query))
	found := make([]Entry, 0)
	for _, e := range c.entries {
		if q == "" || strings.Contains(e.Slug, q) || strings.Contains(strings.ToLower(e.Title), q) {
			found = append(found, e)
		}
	}
	return found
}

// Enrich fills the empty metadata fields of event from the catalog.
// Fields already set are left alone. Reports whether the slug was known.
func (c *Catalog) Enrich(event *domain.SubmissionEvent) bool {
	e, ok := c.Lookup(event.Slug)
	if !ok {
		return false
	}
	if event.QuestionID == "" {
		event.QuestionID = e.QuestionID
	}
	if event.Title == "" {
		event.Title = e.Title
	}
	if event.Difficulty == "" {
		event.Difficulty = e.Difficulty
	}
	if len(event.Tags) == 0 {
		event.Tags = append([]string{}, e.Topics...)
	}
	if event.URL == "" && event.Origin != domain.OriginCN {
		event.URL = e.URL
	}
	return true
}
