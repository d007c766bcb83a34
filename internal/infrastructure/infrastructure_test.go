package infrastructure

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestLoadConfigFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LEETCURVE_DATA_DIR", dir)
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("SCHEDULE_COOLDOWN_MINUTES", "15")
	t.Setenv("BACKUP_DEBOUNCE_SECONDS", "not-a-number")
	t.Setenv("OTEL_SAMPLE_RATIO", "0.5")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("TELEMETRY_ENABLED", "yes")

	cfg := LoadConfig()

	if cfg.Database.Driver != DriverMemory {
		t.Errorf("driver = %q", cfg.Database.Driver)
	}
	if cfg.Database.Path != filepath.Join(dir, "leetcurve.db") {
		t.Errorf("db path = %q", cfg.Database.Path)
	}
	if cfg.Backup.Path != filepath.Join(dir, "backup.json") {
		t.Errorf("backup path = %q", cfg.Backup.Path)
	}
	if cfg.Schedule.Cooldown != 15*time.Minute {
		t.Errorf("cooldown = %v", cfg.Schedule.Cooldown)
	}
	if cfg.Backup.Debounce != 5*time.Second {
		t.Errorf("unparsable debounce should fall back to default, got %v", cfg.Backup.Debounce)
	}
	if cfg.Telemetry.SampleRatio != 0.5 {
		t.Errorf("sample ratio = %v", cfg.Telemetry.SampleRatio)
	}
	if cfg.Telemetry.Enabled {
		t.Error("unparsable bool should fall back to false")
	}
	origins := cfg.CORS.AllowOrigins
	if len(origins) != 2 || origins[0] != "https://a.example" || origins[1] != "https://b.example" {
		t.Errorf("origins = %q", origins)
	}
}

func TestLoadConfigScheduleBounds(t *testing.T) {
	tests := []struct {
		name         string
		cooldown     string
		refresh      string
		wantCooldown time.Duration
		wantRefresh  time.Duration
	}{
		{"zero refresh", "60", "0", time.Hour, time.Hour},
		{"negative refresh", "60", "-5", time.Hour, time.Hour},
		{"negative cooldown", "-1", "30", time.Hour, 30 * time.Minute},
		{"zero cooldown disables dedup", "0", "1", 0, time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SCHEDULE_COOLDOWN_MINUTES", tt.cooldown)
			t.Setenv("SCHEDULE_REFRESH_MINUTES", tt.refresh)

			cfg := LoadConfig()
			if cfg.Schedule.Cooldown != tt.wantCooldown {
				t.Errorf("cooldown = %v, want %v", cfg.Schedule.Cooldown, tt.wantCooldown)
			}
			if cfg.Schedule.RefreshInterval != tt.wantRefresh {
				t.Errorf("refresh interval = %v, want %v", cfg.Schedule.RefreshInterval, tt.wantRefresh)
			}
		})
	}
}

func TestScheduleLocation(t *testing.T) {
	tests := []struct {
		tz   string
		want string
	}{
		{"", time.Local.String()},
		{"Local", time.Local.String()},
		{"UTC", "UTC"},
		{"Asia/Shanghai", "Asia/Shanghai"},
		{"Nowhere/Special", time.Local.String()},
	}
	for _, tt := range tests {
		cfg := ScheduleConfig{Timezone: tt.tz}
		if got := cfg.Location().String(); got != tt.want {
			t.Errorf("Location(%q) = %s, want %s", tt.tz, got, tt.want)
		}
	}
}

func TestDSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", DBName: "lc", SSLMode: "disable"}
	want := "host=db port=5433 user=u password=p dbname=lc sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestDisabledTelemetryCreatesMetrics(t *testing.T) {
	ctx := context.Background()
	tel, err := NewTelemetry(ctx, &TelemetryConfig{ServiceName: "leetcurve"}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewTelemetry: %v", err)
	}
	if tel.TracerProvider != nil || tel.PrometheusExporter != nil {
		t.Error("disabled telemetry should not build exporters")
	}

	metrics, err := tel.CreateMetrics()
	if err != nil {
		t.Fatalf("CreateMetrics: %v", err)
	}
	metrics.ProblemsDue.Record(ctx, 3)
	metrics.SubmissionsIngested.Add(ctx, 1)

	if err := tel.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestNewDatabaseSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "leetcurve.db")
	db, err := NewDatabase(&DatabaseConfig{Driver: DriverSQLite, Path: path}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewDatabase: %v", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	for _, table := range []string{"problems", "tag_weights", "activity_log"} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("table %s missing after migration", table)
		}
	}
	if err := db.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck: %v", err)
	}
}

func TestNewDatabaseRejectsMemoryDriver(t *testing.T) {
	if _, err := NewDatabase(&DatabaseConfig{Driver: DriverMemory}, zap.NewNop()); err == nil {
		t.Error("memory driver should be rejected")
	}
}
