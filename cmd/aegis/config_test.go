package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openefficiency/aegisv11-sub000/pkg/types"

	"github.com/urfave/cli/v2"
)

func runConfig(t *testing.T, args ...string) (*types.Config, error) {
	t.Helper()

	var (
		got    *types.Config
		loaded error
	)
	app := &cli.App{
		Name: "aegis",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-prefix"},
			&cli.StringFlag{Name: "env-file", Value: filepath.Join(t.TempDir(), "absent.env")},
		},
		Action: func(c *cli.Context) error {
			got, loaded = loadConfig(c)
			return nil
		},
	}

	if err := app.Run(append([]string{"aegis"}, args...)); err != nil {
		t.Fatalf("app.Run() error = %v", err)
	}
	return got, loaded
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "none")

	cfg, err := runConfig(t)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.ManualRateLimit != 5 || cfg.MapRateLimit != 10 || cfg.VoiceRateLimit != 100 {
		t.Fatalf("limits = %d/%d/%d", cfg.ManualRateLimit, cfg.MapRateLimit, cfg.VoiceRateLimit)
	}
	if cfg.RateLimitWindow.Minutes() != 15 {
		t.Fatalf("window = %s", cfg.RateLimitWindow)
	}
	if cfg.DatabaseSchema != "aegis" || cfg.ServerPort != 8080 {
		t.Fatalf("schema %q port %d", cfg.DatabaseSchema, cfg.ServerPort)
	}
}

func TestLoadConfigPrefix(t *testing.T) {
	t.Setenv("AEGIS_STORE_BACKEND", "none")
	t.Setenv("AEGIS_MANUAL_RATE_LIMIT", "7")

	cfg, err := runConfig(t, "--env-prefix", "AEGIS")
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.ManualRateLimit != 7 {
		t.Fatalf("manual limit = %d, want 7", cfg.ManualRateLimit)
	}
}

func TestLoadConfigEnvFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(file, []byte("STORE_BACKEND=none\nMAP_RATE_LIMIT=3\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("STORE_BACKEND")
		os.Unsetenv("MAP_RATE_LIMIT")
	})

	cfg, err := runConfig(t, "--env-file", file)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.MapRateLimit != 3 {
		t.Fatalf("map limit = %d, want 3", cfg.MapRateLimit)
	}

	if _, err := runConfig(t, "--env-file", file+".missing"); err == nil {
		t.Fatal("an explicitly named env file that is missing should fail")
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"postgres without url", map[string]string{"STORE_BACKEND": "postgres", "DATABASE_URL": ""}, "DATABASE_URL"},
		{"supabase without key", map[string]string{"STORE_BACKEND": "supabase", "SUPABASE_URL": "https://x.supabase.co", "SUPABASE_SERVICE_KEY": ""}, "SUPABASE_SERVICE_KEY"},
		{"unknown backend", map[string]string{"STORE_BACKEND": "mongo"}, "unknown STORE_BACKEND"},
		{"zero limit", map[string]string{"STORE_BACKEND": "none", "VOICE_RATE_LIMIT": "0"}, "VOICE_RATE_LIMIT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := runConfig(t)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want mention of %s", err, tt.want)
			}
		})
	}
}
