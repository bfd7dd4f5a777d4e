package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const minimalYAML = `
telegram:
  token: "123456:ABC-DEF"
  admin_id: 111222333
`

func TestLoadAppliesDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := Load(writeConfig(t, "config.yaml", minimalYAML))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.API.BaseURL != "https://7xhublikes.space" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.MinLikes != 100 {
		t.Errorf("MinLikes = %d", cfg.API.MinLikes)
	}
	if cfg.API.Timeout != "60s" {
		t.Errorf("Timeout = %q", cfg.API.Timeout)
	}
	if cfg.Schedule.Timezone != "America/Sao_Paulo" {
		t.Errorf("Timezone = %q", cfg.Schedule.Timezone)
	}
	if cfg.Schedule.DailyAt != "00:00" {
		t.Errorf("DailyAt = %q", cfg.Schedule.DailyAt)
	}
	if cfg.Storage.Path != "data/likesbot.db" {
		t.Errorf("Storage.Path = %q", cfg.Storage.Path)
	}
	if cfg.API.KeyFile != "data/api_key.txt" {
		t.Errorf("KeyFile = %q", cfg.API.KeyFile)
	}
}

func TestLoadFullYAML(t *testing.T) {
	t.Parallel()
	cfg, err := Load(writeConfig(t, "config.yaml", `
telegram:
  token: "123456:ABC-DEF"
  admin_id: 111222333
  poll_timeout: "15s"
api:
  base_url: "https://likes.example.com"
  min_likes: 50
  timeout: "30s"
schedule:
  timezone: "UTC"
  daily_at: "03:30"
logging:
  level: "DEBUG"
  console: true
`))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.API.BaseURL != "https://likes.example.com" || cfg.API.MinLikes != 50 {
		t.Fatalf("api section: %+v", cfg.API)
	}
	if cfg.Schedule.DailyAt != "03:30" {
		t.Fatalf("DailyAt = %q", cfg.Schedule.DailyAt)
	}

	d, err := ParseDurationField("telegram.poll_timeout", cfg.Telegram.PollTimeout)
	if err != nil || d != 15*time.Second {
		t.Fatalf("poll_timeout = %v, %v", d, err)
	}
}

func TestLoadAcceptsJSON(t *testing.T) {
	t.Parallel()
	cfg, err := Load(writeConfig(t, "config.json",
		`{"telegram": {"token": "123456:ABC", "admin_id": 42}}`))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Telegram.AdminID != 42 {
		t.Fatalf("AdminID = %d", cfg.Telegram.AdminID)
	}
}

func TestLoadRejectsUnknownField(t *testing.T) {
	t.Parallel()
	_, err := Load(writeConfig(t, "config.yaml", minimalYAML+`
api:
  basse_url: "typo"
`))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
	if !strings.Contains(err.Error(), "unknown field") {
		t.Fatalf("err = %v", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		yaml string
	}{
		{name: "missing token", yaml: `
telegram:
  admin_id: 1
`},
		{name: "missing admin", yaml: `
telegram:
  token: "t"
`},
		{name: "bad timeout", yaml: minimalYAML + `
api:
  timeout: "fast"
`},
		{name: "bad timezone", yaml: minimalYAML + `
schedule:
  timezone: "Mars/Olympus"
`},
		{name: "bad daily_at", yaml: minimalYAML + `
schedule:
  daily_at: "25:00"
`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, "config.yaml", tt.yaml)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestParseHHMM(t *testing.T) {
	t.Parallel()
	h, m, err := ParseHHMM("23:15")
	if err != nil {
		t.Fatalf("ParseHHMM error: %v", err)
	}
	if h != 23 || m != 15 {
		t.Fatalf("unexpected result: %d:%d", h, m)
	}

	for _, bad := range []string{"24:00", "12:60", "noon", "12", "", "00:00junk", "x12:30", "1:2:3"} {
		if _, _, err := ParseHHMM(bad); err == nil {
			t.Errorf("ParseHHMM(%q): expected error", bad)
		}
	}
}

func TestParseDurationField(t *testing.T) {
	t.Parallel()
	if d, err := ParseDurationField("x", ""); err != nil || d != 0 {
		t.Fatalf("empty: %v, %v", d, err)
	}
	if _, err := ParseDurationField("x", "-5s"); err == nil {
		t.Fatal("expected error for negative duration")
	}
}
