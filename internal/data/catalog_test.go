package data

import (
	"testing"

	"github.com/leetcurve/backend/internal/domain"
)

func mustCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := LoadCatalog()
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	return c
}

func TestCatalogLoads(t *testing.T) {
	c := mustCatalog(t)
	if c.Len() < 40 {
		t.Fatalf("Len = %d, want the embedded list", c.Len())
	}
	all := c.Search("")
	for i := 1; i < len(all); i++ {
		if all[i-1].OrderIndex >= all[i].OrderIndex {
			t.Fatalf("entries out of order at %d: %d then %d", i, all[i-1].OrderIndex, all[i].OrderIndex)
		}
	}
	for _, e := range all {
		if e.Slug == "" || e.Title == "" || e.QuestionID == "" || len(e.Topics) == 0 {
			t.Errorf("incomplete entry %+v", e)
		}
	}
}

func TestCatalogLookup(t *testing.T) {
	c := mustCatalog(t)

	e, ok := c.Lookup(" Two-Sum ")
	if !ok {
		t.Fatal("two-sum not found")
	}
	if e.QuestionID != "1" || e.Difficulty != domain.DifficultyEasy {
		t.Errorf("two-sum = %+v", e)
	}
	if _, ok := c.Lookup("not-a-problem"); ok {
		t.Error("unknown slug found")
	}
}

func TestCatalogSearch(t *testing.T) {
	c := mustCatalog(t)
	got := c.Search("binary tree")
	if len(got) < 2 {
		t.Fatalf("Search(binary tree) = %d entries", len(got))
	}
	for _, e := range got {
		if e.Slug == "two-sum" {
			t.Errorf("unexpected match %s", e.Slug)
		}
	}
}

func TestCatalogEnrich(t *testing.T) {
	c := mustCatalog(t)

	tests := []struct {
		name  string
		event domain.SubmissionEvent
		known bool
		want  domain.SubmissionEvent
	}{
		{
			name:  "fills missing fields",
			event: domain.SubmissionEvent{Slug: "lru-cache"},
			known: true,
			want: domain.SubmissionEvent{
				Slug:       "lru-cache",
				QuestionID: "146",
				Title:      "LRU Cache",
				Difficulty: domain.DifficultyMedium,
				URL:        "https://leetcode.com/problems/lru-cache/",
			},
		},
		{
			name:  "keeps given fields",
			event: domain.SubmissionEvent{Slug: "lru-cache", Title: "My LRU", Difficulty: domain.DifficultyHard},
			known: true,
			want: domain.SubmissionEvent{
				Slug:       "lru-cache",
				QuestionID: "146",
				Title:      "My LRU",
				Difficulty: domain.DifficultyHard,
				URL:        "https://leetcode.com/problems/lru-cache/",
			},
		},
		{
			name:  "cn origin keeps its own url",
			event: domain.SubmissionEvent{Slug: "lru-cache", Origin: domain.OriginCN},
			known: true,
			want: domain.SubmissionEvent{
				Slug:       "lru-cache",
				QuestionID: "146",
				Title:      "LRU Cache",
				Difficulty: domain.DifficultyMedium,
				Origin:     domain.OriginCN,
			},
		},
		{
			name:  "unknown slug untouched",
			event: domain.SubmissionEvent{Slug: "my-own-problem"},
			known: false,
			want:  domain.SubmissionEvent{Slug: "my-own-problem"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := tt.event
			if got := c.Enrich(&ev); got != tt.known {
				t.Fatalf("Enrich = %v, want %v", got, tt.known)
			}
			if ev.QuestionID != tt.want.QuestionID || ev.Title != tt.want.Title ||
				ev.Difficulty != tt.want.Difficulty || ev.URL != tt.want.URL || ev.Origin != tt.want.Origin {
				t.Errorf("event = %+v, want %+v", ev, tt.want)
			}
			if tt.known && len(ev.Tags) == 0 {
				t.Error("tags not filled")
			}
		})
	}
}
