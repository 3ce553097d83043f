package config

import "runtime"

const (
	defaultConfigPath       = "~/.config/cbae/config.toml"
	defaultLogDir           = "~/.local/share/cbae/logs"
	defaultStateDirFallback = "~/.local/state/cbae"
	defaultFFmpegBinary     = "ffmpeg"
	defaultCodec            = "flac"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30
	defaultNtfyTimeout      = 10
	maxWorkers              = 32
)

// Codec quality ranges; 0 always selects the codec default.
var codecQuality = map[string]struct{ min, max, fallback int }{
	"flac": {min: 1, max: 12, fallback: 5},
	"ogg":  {min: 1, max: 10, fallback: 6},
	"opus": {min: 6, max: 510, fallback: 128},
	"mp3":  {min: 1, max: 10, fallback: 8},
	"wav":  {},
}

// Codecs lists the supported audio codecs.
func Codecs() []string {
	return []string{"flac", "ogg", "opus", "mp3", "wav"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir(),
		},
		Encoder: Encoder{
			FFmpegBinary: defaultFFmpegBinary,
			Codec:        defaultCodec,
		},
		Workflow: Workflow{
			Workers:   defaultWorkers(),
			Checksums: true,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}

func defaultWorkers() int {
	n := runtime.NumCPU()
	if n > 4 {
		n = 4
	}
	if n < 1 {
		n = 1
	}
	return n
}

// EffectiveQuality returns the configured quality, or the codec default when
// none was set.
func (e Encoder) EffectiveQuality() int {
	if e.Quality != 0 {
		return e.Quality
	}
	return codecQuality[e.Codec].fallback
}
