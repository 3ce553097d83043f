package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/john32b/cbae/internal/config"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv("CBAE_FFMPEG", "")
	t.Setenv("CBAE_OUTPUT_DIR", "")
	t.Setenv("CBAE_NTFY_TOPIC", "")
	return tempHome
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := isolateEnv(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantLogs := filepath.Join(tempHome, ".local", "share", "cbae", "logs")
	if cfg.Paths.LogDir != wantLogs {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogs)
	}
	wantState := filepath.Join(tempHome, ".local", "state", "cbae")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Paths.OutputDir != "" {
		t.Fatalf("expected empty output dir, got %q", cfg.Paths.OutputDir)
	}
	if cfg.OutputRoot("/discs") != "/discs" {
		t.Fatalf("expected output next to the sheet, got %q", cfg.OutputRoot("/discs"))
	}
	if cfg.HistoryPath() != filepath.Join(wantState, "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.HistoryPath())
	}
	if cfg.Encoder.Codec != "flac" || cfg.FFmpegBinary() != "ffmpeg" {
		t.Fatalf("unexpected encoder defaults: %+v", cfg.Encoder)
	}
	if cfg.Encoder.EffectiveQuality() != 5 {
		t.Fatalf("expected flac default quality 5, got %d", cfg.Encoder.EffectiveQuality())
	}
	if cfg.Workflow.Workers < 1 || !cfg.Workflow.Checksums {
		t.Fatalf("unexpected workflow defaults: %+v", cfg.Workflow)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.LogDir, cfg.Paths.StateDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempHome := isolateEnv(t)
	configPath := filepath.Join(t.TempDir(), "cbae.toml")

	type payload struct {
		Paths struct {
			OutputDir string `toml:"output_dir"`
		} `toml:"paths"`
		Encoder struct {
			Codec   string `toml:"codec"`
			Quality int    `toml:"quality"`
		} `toml:"encoder"`
		Workflow struct {
			Workers      int    `toml:"workers"`
			NameTemplate string `toml:"name_template"`
		} `toml:"workflow"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.OutputDir = "~/converted"
	custom.Encoder.Codec = " Vorbis "
	custom.Encoder.Quality = 9
	custom.Workflow.Workers = 2
	custom.Workflow.NameTemplate = " {no} - {tt} "
	custom.Logging.Format = "JSON"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.OutputDir != filepath.Join(tempHome, "converted") {
		t.Fatalf("unexpected output dir: %q", cfg.Paths.OutputDir)
	}
	if cfg.OutputRoot("/discs") != cfg.Paths.OutputDir {
		t.Fatalf("expected configured output root, got %q", cfg.OutputRoot("/discs"))
	}
	if cfg.Encoder.Codec != "ogg" || cfg.Encoder.EffectiveQuality() != 9 {
		t.Fatalf("unexpected encoder: %+v", cfg.Encoder)
	}
	if cfg.Workflow.Workers != 2 || cfg.Workflow.NameTemplate != "{no} - {tt}" {
		t.Fatalf("unexpected workflow: %+v", cfg.Workflow)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected json format, got %q", cfg.Logging.Format)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	isolateEnv(t)
	configPath := filepath.Join(t.TempDir(), "cbae.toml")
	if err := os.WriteFile(configPath, []byte("[encoder]\nbitrate = 320\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, _, err := config.Load(configPath)
	if err == nil || !strings.Contains(err.Error(), "bitrate") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestFFmpegEnvOverridesConfigFile(t *testing.T) {
	isolateEnv(t)
	configPath := filepath.Join(t.TempDir(), "cbae.toml")
	if err := os.WriteFile(configPath, []byte("[encoder]\nffmpeg_binary = \"/opt/ffmpeg\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CBAE_FFMPEG", "/usr/local/bin/ffmpeg")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.FFmpegBinary() != "/usr/local/bin/ffmpeg" {
		t.Fatalf("expected ffmpeg from env, got %q", cfg.FFmpegBinary())
	}
}

func TestNtfyTopicFallsBackToEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv("CBAE_NTFY_TOPIC", " https://ntfy.example/cbae ")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Notifications.NtfyTopic != "https://ntfy.example/cbae" {
		t.Fatalf("unexpected topic %q", cfg.Notifications.NtfyTopic)
	}
	if cfg.Notifications.RequestTimeout != 10 {
		t.Fatalf("unexpected timeout %d", cfg.Notifications.RequestTimeout)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "CBAE_FFMPEG") {
		t.Fatalf("sample config missing ffmpeg env hint: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Encoder.Codec != "flac" || cfg.Workflow.Workers != 4 {
		t.Fatalf("unexpected sample values: %+v", cfg)
	}

	isolateEnv(t)
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{name: "unknown codec", mutate: func(c *config.Config) { c.Encoder.Codec = "aac" }},
		{name: "ogg quality too high", mutate: func(c *config.Config) { c.Encoder.Codec = "ogg"; c.Encoder.Quality = 11 }},
		{name: "opus bitrate too low", mutate: func(c *config.Config) { c.Encoder.Codec = "opus"; c.Encoder.Quality = 2 }},
		{name: "wav with quality", mutate: func(c *config.Config) { c.Encoder.Codec = "wav"; c.Encoder.Quality = 3 }},
		{name: "empty ffmpeg", mutate: func(c *config.Config) { c.Encoder.FFmpegBinary = " " }},
		{name: "zero workers", mutate: func(c *config.Config) { c.Workflow.Workers = 0 }},
		{name: "too many workers", mutate: func(c *config.Config) { c.Workflow.Workers = 1000 }},
		{name: "bad log level", mutate: func(c *config.Config) { c.Logging.Level = "verbose" }},
		{name: "ntfy topic without scheme", mutate: func(c *config.Config) { c.Notifications.NtfyTopic = "ntfy.sh/cbae" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	cfg.Encoder.Codec = "mp3"
	cfg.Encoder.Quality = 10
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid mp3 config, got %v", err)
	}
}

func TestWithOverrides(t *testing.T) {
	isolateEnv(t)
	base, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	base.Encoder.Codec = "ogg"
	base.Encoder.Quality = 9

	intPtr := func(v int) *int { return &v }
	strPtr := func(v string) *string { return &v }

	tests := []struct {
		name    string
		in      config.Overrides
		check   func(t *testing.T, cfg *config.Config)
		wantErr bool
	}{
		{
			name: "no overrides keeps file values",
			in:   config.Overrides{},
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Encoder.Codec != "ogg" || cfg.Encoder.Quality != 9 {
					t.Fatalf("unexpected encoder %#v", cfg.Encoder)
				}
			},
		},
		{
			name: "codec change resets quality",
			in:   config.Overrides{Codec: "FLAC"},
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Encoder.Codec != "flac" || cfg.Encoder.Quality != 0 {
					t.Fatalf("unexpected encoder %#v", cfg.Encoder)
				}
			},
		},
		{
			name: "explicit quality and workers",
			in:   config.Overrides{Codec: "opus", Quality: intPtr(96), Workers: intPtr(3), NameTemplate: strPtr("{no}"), Overwrite: true},
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Encoder.Quality != 96 || cfg.Workflow.Workers != 3 || cfg.Workflow.NameTemplate != "{no}" || !cfg.Workflow.Overwrite {
					t.Fatalf("unexpected config %#v", cfg)
				}
			},
		},
		{
			name: "output dir is expanded",
			in:   config.Overrides{OutputDir: "~/discs"},
			check: func(t *testing.T, cfg *config.Config) {
				if !filepath.IsAbs(cfg.Paths.OutputDir) || filepath.Base(cfg.Paths.OutputDir) != "discs" {
					t.Fatalf("unexpected output dir %q", cfg.Paths.OutputDir)
				}
			},
		},
		{
			name:    "quality out of range",
			in:      config.Overrides{Quality: intPtr(42)},
			wantErr: true,
		},
		{
			name:    "unknown codec",
			in:      config.Overrides{Codec: "aac"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := base.WithOverrides(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("WithOverrides: %v", err)
			}
			tt.check(t, cfg)
			if base.Encoder.Codec != "ogg" {
				t.Fatal("WithOverrides must not modify the receiver")
			}
		})
	}
}
