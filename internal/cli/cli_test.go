package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var t0 = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("LEETCURVE_DATA_DIR", dir)
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(dir, "leetcurve.db"))
	t.Setenv("BACKUP_PATH", filepath.Join(dir, "backup.json"))
	t.Setenv("SCHEDULE_TIMEZONE", "UTC")
	t.Setenv("SCHEDULE_COOLDOWN_MINUTES", "60")
	t.Setenv("AUTH_SECRET", "")
	return dir
}

func run(t *testing.T, now time.Time, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand(func() time.Time { return now })
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, now time.Time, args ...string) string {
	t.Helper()
	out, err := run(t, now, "", args...)
	if err != nil {
		t.Fatalf("leetcurve %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func TestIngestLifecycle(t *testing.T) {
	setupEnv(t)

	out := mustRun(t, t0, "ingest", "two-sum")
	if !strings.Contains(out, "New problem added to the review queue") {
		t.Fatalf("first ingest: %q", out)
	}

	out = mustRun(t, t0.Add(20*time.Minute), "ingest", "two-sum")
	if !strings.Contains(out, "Still in cooldown, 40 minutes remain") {
		t.Errorf("cooldown ingest: %q", out)
	}

	out = mustRun(t, t0.Add(2*time.Hour), "ingest", "two-sum")
	if !strings.Contains(out, "Advanced to stage Review 2") {
		t.Errorf("advance ingest: %q", out)
	}

	out = mustRun(t, t0.Add(2*time.Hour), "list")
	if !strings.Contains(out, "Two Sum") || !strings.Contains(out, "Easy") || !strings.Contains(out, "Review 2") {
		t.Errorf("list should carry catalog metadata and stage: %q", out)
	}
}

func TestDueAndStats(t *testing.T) {
	setupEnv(t)
	mustRun(t, t0, "ingest", "two-sum")
	mustRun(t, t0, "add", "My Custom Problem", "-d", "hard", "-t", "Graph")

	out := mustRun(t, t0.Add(time.Hour), "due")
	if !strings.Contains(out, "Nothing due") {
		t.Errorf("due before the first interval: %q", out)
	}

	out = mustRun(t, t0.Add(72*time.Hour), "due")
	if !strings.Contains(out, "2 problems due") {
		t.Fatalf("due after three days: %q", out)
	}
	if strings.Index(out, "my-custom-problem") > strings.Index(out, "two-sum") {
		t.Errorf("hard problem should rank first: %q", out)
	}

	out = mustRun(t, t0.Add(72*time.Hour), "stats")
	if !strings.Contains(out, "Total:          2") || !strings.Contains(out, "Due:            2") {
		t.Errorf("stats: %q", out)
	}
}

func TestWeights(t *testing.T) {
	setupEnv(t)

	mustRun(t, t0, "weights", "set", "Dynamic Programming", "2.5")
	out := mustRun(t, t0, "weights", "list")
	if !strings.Contains(out, "Dynamic Programming") || !strings.Contains(out, "2.5") {
		t.Errorf("weights list: %q", out)
	}

	if _, err := run(t, t0, "", "weights", "set", "Graph", "0"); err == nil {
		t.Error("zero weight accepted")
	}

	mustRun(t, t0, "weights", "rm", "Dynamic Programming")
	out = mustRun(t, t0, "weights", "list")
	if !strings.Contains(out, "No tag weights set") {
		t.Errorf("weights after rm: %q", out)
	}
}

func TestExportClearImport(t *testing.T) {
	dir := setupEnv(t)
	file := filepath.Join(dir, "export.json")

	mustRun(t, t0, "ingest", "lru-cache")
	mustRun(t, t0, "export", file)

	out, err := run(t, t0, "n\n", "clear")
	if err != nil || !strings.Contains(out, "Cancelled") {
		t.Fatalf("declined clear: %q %v", out, err)
	}
	mustRun(t, t0, "clear", "--force")
	if out := mustRun(t, t0, "list"); strings.Contains(out, "lru-cache") {
		t.Fatalf("list after clear: %q", out)
	}

	out = mustRun(t, t0, "import", file)
	if !strings.Contains(out, "Imported 1 problems") {
		t.Errorf("import: %q", out)
	}
	if out := mustRun(t, t0, "list"); !strings.Contains(out, "lru-cache") {
		t.Errorf("list after import: %q", out)
	}

	if _, err := run(t, t0, "", "import", filepath.Join(dir, "missing.json")); err == nil {
		t.Error("importing a missing file should fail")
	}
}

func TestNoteResetDelete(t *testing.T) {
	setupEnv(t)
	mustRun(t, t0, "ingest", "valid-parentheses")

	mustRun(t, t0, "note", "valid-parentheses", "--note", "use a stack")
	out := mustRun(t, t0, "note", "valid-parentheses")
	if !strings.Contains(out, "use a stack") {
		t.Errorf("note: %q", out)
	}

	out = mustRun(t, t0.Add(time.Hour), "reset", "valid-parentheses")
	if !strings.Contains(out, "Reset valid-parentheses") {
		t.Errorf("reset: %q", out)
	}
	if _, err := run(t, t0, "", "reset", "nope"); err == nil {
		t.Error("reset of an unknown slug should fail")
	}

	mustRun(t, t0, "delete", "valid-parentheses", "--force")
	if out := mustRun(t, t0, "list"); strings.Contains(out, "valid-parentheses") {
		t.Errorf("list after delete: %q", out)
	}
}

func TestTokenNeedsSecret(t *testing.T) {
	setupEnv(t)
	if _, err := run(t, t0, "", "token"); err == nil {
		t.Error("token without AUTH_SECRET should fail")
	}

	t.Setenv("AUTH_SECRET", "s3cret")
	out := mustRun(t, t0, "token")
	if strings.Count(strings.SplitN(out, "\n", 2)[0], ".") != 2 {
		t.Errorf("token output is not a JWT: %q", out)
	}
}

func TestCatalogAndStages(t *testing.T) {
	out := mustRun(t, t0, "catalog", "anagram")
	if !strings.Contains(out, "valid-anagram") || !strings.Contains(out, "group-anagrams") {
		t.Errorf("catalog search: %q", out)
	}
	out = mustRun(t, t0, "stages")
	if !strings.Contains(out, "24h") || !strings.Contains(out, "Mastered") {
		t.Errorf("stages: %q", out)
	}
}
