package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/leetcurve/backend/internal/domain"
	"github.com/leetcurve/backend/internal/infrastructure"
)

func testConfig(dir, driver string) *infrastructure.Config {
	return &infrastructure.Config{
		Database: infrastructure.DatabaseConfig{
			Driver: driver,
			Path:   filepath.Join(dir, "leetcurve.db"),
		},
		Telemetry: infrastructure.TelemetryConfig{ServiceName: "leetcurve-test"},
		Schedule: infrastructure.ScheduleConfig{
			Cooldown:        time.Hour,
			RefreshInterval: time.Hour,
			Timezone:        "UTC",
		},
		Backup: infrastructure.BackupConfig{
			Enabled:  true,
			Path:     filepath.Join(dir, "backup.json"),
			Debounce: time.Hour,
		},
	}
}

func mustApp(t *testing.T, config *infrastructure.Config) *App {
	t.Helper()
	a, err := New(context.Background(), config, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func ingest(t *testing.T, a *App, slug string) {
	t.Helper()
	_, err := a.Reviews.IngestAcceptedSubmission(context.Background(), &domain.SubmissionEvent{
		Slug:      slug,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		t.Fatalf("ingest %s: %v", slug, err)
	}
}

func count(t *testing.T, a *App) int64 {
	t.Helper()
	n, err := a.Store.CountProblems(context.Background())
	if err != nil {
		t.Fatalf("CountProblems: %v", err)
	}
	return n
}

func TestMemoryStoreRestoresFromBackup(t *testing.T) {
	ctx := context.Background()
	config := testConfig(t.TempDir(), infrastructure.DriverMemory)

	first := mustApp(t, config)
	ingest(t, first, "two-sum")
	ingest(t, first, "3sum")
	first.Close(ctx)

	second := mustApp(t, config)
	defer second.Close(ctx)
	if got := count(t, second); got != 2 {
		t.Fatalf("restored %d problems, want 2", got)
	}
}

func TestSQLiteRestoresOnlyFreshInstall(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	config := testConfig(dir, infrastructure.DriverSQLite)

	first := mustApp(t, config)
	if first.Database == nil {
		t.Fatal("sqlite driver should open a database")
	}
	ingest(t, first, "two-sum")
	first.Close(ctx)

	// the existing database wins; the cleared state is not resurrected
	second := mustApp(t, config)
	if err := second.Reviews.ClearAllData(ctx); err != nil {
		t.Fatalf("ClearAllData: %v", err)
	}
	second.Close(ctx)

	third := mustApp(t, config)
	if got := count(t, third); got != 0 {
		t.Errorf("reopened database has %d problems, want 0", got)
	}
	third.Close(ctx)

	// a new database file next to the same backup is a fresh install
	config.Database.Path = filepath.Join(dir, "reinstalled.db")
	fourth := mustApp(t, config)
	defer fourth.Close(ctx)
	if got := count(t, fourth); got != 1 {
		t.Errorf("fresh install restored %d problems, want 1", got)
	}
	if err := fourth.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck: %v", err)
	}
}

func TestBackupDisabled(t *testing.T) {
	config := testConfig(t.TempDir(), infrastructure.DriverMemory)
	config.Backup.Enabled = false

	a := mustApp(t, config)
	defer a.Close(context.Background())
	if a.Backup != nil {
		t.Error("backup notifier built while disabled")
	}
	ingest(t, a, "two-sum")
	if a.Tokens.Enabled() {
		t.Error("tokens enabled without a secret")
	}
}
